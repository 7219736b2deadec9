// Package store persists the latest stock of each shop so that other
// processes can read it.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
)

// ErrNotFound is returned when no snapshot exists for a shop.
var ErrNotFound = errors.New("store: snapshot not found")

// Snapshot is the stored form of a refreshed shop.
type Snapshot struct {
	Shop        string        `json:"shop"`
	Pack        string        `json:"pack,omitempty"`
	Day         int           `json:"day"`
	RefreshedAt time.Time     `json:"refreshedAt"`
	Listing     stock.Listing `json:"listing"`
}

// FromShop captures the current view of a shop.
func FromShop(s *shop.Shop) Snapshot {
	return Snapshot{
		Shop:        s.Definition.Name,
		Pack:        s.Definition.Pack,
		Day:         s.Day,
		RefreshedAt: s.RefreshedAt,
		Listing:     s.Listing,
	}
}

// Store saves and loads snapshots by shop name.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, shop string) (Snapshot, error)
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore constructs an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

// Save replaces the snapshot of snap.Shop.
func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Shop] = snap
	return nil
}

// Load returns the snapshot of a shop.
func (m *MemoryStore) Load(ctx context.Context, name string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[name]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}
