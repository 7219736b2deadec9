package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps snapshots as JSON strings under <prefix><shop>.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a store over client. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the redis key of a shop's snapshot.
func (s *RedisStore) Key(shop string) string {
	return s.prefix + shop
}

// Save writes the snapshot of snap.Shop.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(snap.Shop), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.Shop, err)
	}
	return nil
}

// Load reads the snapshot of a shop.
func (s *RedisStore) Load(ctx context.Context, shop string) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.Key(shop)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot %s: %w", shop, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", shop, err)
	}
	return snap, nil
}
