package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/network"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/store"
	"github.com/gravitas-games/shoptiles/internal/world"
	"github.com/gravitas-games/shoptiles/pkg/models"
)

const storeTimeout = 5 * time.Second

type savedStock struct {
	day         int
	refreshedAt time.Time
}

// olderThan reports whether snap was refreshed before s
func (s savedStock) olderThan(snap store.Snapshot) bool {
	if snap.RefreshedAt.Equal(s.refreshedAt) {
		return snap.Day < s.day
	}
	return snap.RefreshedAt.Before(s.refreshedAt)
}

// Session serves shop requests for every connected client
type Session struct {
	ID        string
	CreatedAt time.Time

	registry  *shop.Registry
	world     *world.Live
	harvest   *harvest.Table
	store     store.Store
	monitor   *logging.Monitor
	debugOpen bool

	// saveMu orders saves; saved holds the newest snapshot saved per shop
	saveMu sync.Mutex
	saved  map[string]savedStock

	// Connection management
	connections map[*Connection]*models.Player
	mu          sync.RWMutex
}

// SessionOptions holds the collaborators of a session
type SessionOptions struct {
	Registry *shop.Registry
	Events   shop.EventBus
	World    *world.Live
	Harvest  *harvest.Table
	Store    store.Store
	Monitor  *logging.Monitor
	// DebugOpen skips shop conditions for every client
	DebugOpen bool
}

// NewSession creates a session and subscribes it to registry events
func NewSession(id string, opts SessionOptions) *Session {
	if opts.World == nil {
		opts.World = world.NewLive(nil)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		registry:    opts.Registry,
		world:       opts.World,
		harvest:     opts.Harvest,
		store:       opts.Store,
		monitor:     opts.Monitor,
		debugOpen:   opts.DebugOpen,
		saved:       make(map[string]savedStock),
		connections: make(map[*Connection]*models.Player),
	}
	if opts.Events != nil {
		opts.Events.Subscribe("session:"+id, s.onEvent)
	}
	s.monitor.Infof("Session %s created with %d shops", id, s.registry.Len())
	return s
}

// onEvent persists every refreshed listing. Events arrive on separate
// goroutines, so a listing older than the last one saved is dropped.
func (s *Session) onEvent(e shop.Event) {
	if e.Type != shop.EventRefreshed || e.Shop == nil {
		return
	}
	snap := store.FromShop(e.Shop)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if last, ok := s.saved[snap.Shop]; ok && last.olderThan(snap) {
		s.monitor.Tracef("Skipping stale stock of %s for day %d", snap.Shop, snap.Day)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.Save(ctx, snap); err != nil {
		s.monitor.Warnf("Failed to save stock of %s: %v", snap.Shop, err)
		return
	}
	s.saved[snap.Shop] = savedStock{day: snap.Day, refreshedAt: snap.RefreshedAt}
}

// AddConnection registers a connection for broadcasts
func (s *Session) AddConnection(conn *Connection, player *models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[conn] = player
	s.monitor.Debugf("Player %s (%s) joined session %s", player.Username, player.ID, s.ID)
}

// RemoveConnection unregisters a connection
func (s *Session) RemoveConnection(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player, exists := s.connections[conn]; exists {
		s.monitor.Debugf("Player %s (%s) left session %s", player.Username, player.ID, s.ID)
		delete(s.connections, conn)
	}
}

// PlayerCount returns the number of connected players
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// BroadcastMessage sends a message to all connected players
func (s *Session) BroadcastMessage(msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		conn.SendMessage(msg)
	}
}

// Dispatch handles one client message. It returns the reply for the sender
// and, for restocks, a message for every client.
func (s *Session) Dispatch(player *models.Player, msg *network.ClientMessage) (reply, broadcast *network.ServerMessage) {
	switch msg.Type {
	case network.MsgTypeOpenShop:
		var p network.OpenShopPayload
		if err := decode(msg.Payload, &p); err != nil || p.Shop == "" {
			return errorMessage("invalid_payload", "open_shop requires a shop name"), nil
		}
		return s.OpenShop(player, p.Shop), nil

	case network.MsgTypeListShops:
		return s.ListShops(), nil

	case network.MsgTypeRefresh:
		var p network.RefreshPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errorMessage("invalid_payload", "Invalid refresh payload"), nil
		}
		return s.Refresh(player, p.Shop)

	case network.MsgTypeDayStarted:
		var p network.DayStartedPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errorMessage("invalid_payload", "Invalid day_started payload"), nil
		}
		return s.StartDay(player, &p.World)

	case network.MsgTypeHarvest:
		var p network.HarvestPayload
		if err := decode(msg.Payload, &p); err != nil || p.Crop == "" {
			return errorMessage("invalid_payload", "harvest requires a crop name"), nil
		}
		return s.Harvest(p), nil

	case network.MsgTypePing:
		return &network.ServerMessage{
			Type:    network.MsgTypePong,
			Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
		}, nil

	default:
		s.monitor.Debugf("Unknown message type: %s", msg.Type)
		return errorMessage("unknown_message_type", "Unknown message type"), nil
	}
}

// OpenShop opens a shop against the current world
func (s *Session) OpenShop(player *models.Player, name string) *network.ServerMessage {
	debug := s.debugOpen || (player != nil && player.HasPermission(models.PermissionShopDebug))
	o, err := s.registry.Open(name, s.world.Snapshot(), debug)
	if errors.Is(err, shop.ErrNotFound) {
		return errorMessage("shop_not_found", "No shop named "+name)
	}
	if err != nil {
		s.monitor.Errorf("Failed to open %s: %v", name, err)
		return errorMessage("open_failed", "Failed to open shop")
	}
	if o.Outcome == shop.Closed {
		return &network.ServerMessage{
			Type:    network.MsgTypeShopClosed,
			Payload: network.ShopClosedPayload{Shop: o.Shop, Message: o.ClosedMessage},
		}
	}
	return &network.ServerMessage{
		Type: network.MsgTypeShopStock,
		Payload: network.ShopStockPayload{
			Shop:         o.Shop,
			Currency:     string(o.Currency),
			CurrencyCode: o.Currency.Code(),
			Quote:        o.Quote,
			Categories:   o.Categories,
			FirstToday:   o.FirstToday,
			Entries:      o.Listing,
		},
	}
}

// ListShops describes every registered shop
func (s *Session) ListShops() *network.ServerMessage {
	names := s.registry.Names()
	summaries := make([]network.ShopSummary, 0, len(names))
	for _, name := range names {
		sh, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		summaries = append(summaries, network.ShopSummary{
			Name:    name,
			Pack:    sh.Definition.Pack,
			State:   sh.State.String(),
			Day:     sh.Day,
			Entries: sh.Listing.Len(),
		})
	}
	return &network.ServerMessage{
		Type:    network.MsgTypeShopList,
		Payload: network.ShopListPayload{Shops: summaries},
	}
}

// Refresh restocks one shop, or all when name is empty. Admins only.
func (s *Session) Refresh(player *models.Player, name string) (reply, broadcast *network.ServerMessage) {
	if player == nil || !player.IsAdmin() {
		return errorMessage("forbidden", "Refreshing shops requires admin permission"), nil
	}
	w := s.world.Snapshot()
	shops := []string{name}
	if name == "" {
		shops = s.registry.Names()
		s.registry.RefreshAll(w)
	} else if err := s.registry.Refresh(name, w); err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return errorMessage("shop_not_found", "No shop named "+name), nil
		}
		return errorMessage("refresh_failed", err.Error()), nil
	}
	msg := refreshed(shops, w)
	return msg, msg
}

// StartDay swaps in the new world state and restocks every shop. Admins only.
func (s *Session) StartDay(player *models.Player, w *world.Snapshot) (reply, broadcast *network.ServerMessage) {
	if player == nil || !player.IsAdmin() {
		return errorMessage("forbidden", "Starting a day requires admin permission"), nil
	}
	if w.Season != "" {
		season, ok := world.ParseSeason(string(w.Season))
		if !ok {
			return errorMessage("invalid_payload", "Unknown season "+string(w.Season)), nil
		}
		w.Season = season
	}
	s.world.Set(w)
	s.monitor.Infof("Day %d started (%s %d, year %d)", w.DaysPlayed, w.Season, w.DayOfMonth, w.Year)
	s.registry.RefreshAll(w)
	msg := refreshed(s.registry.Names(), w)
	return msg, msg
}

// Harvest rolls the extra drops of a crop on the current day
func (s *Session) Harvest(p network.HarvestPayload) *network.ServerMessage {
	var drops []harvest.Drop
	if s.harvest != nil {
		drops = s.harvest.Spawn(p.Crop, p.Fertilizer, harvest.Tile{X: p.X, Y: p.Y}, s.world.Snapshot())
	}
	if drops == nil {
		drops = []harvest.Drop{}
	}
	return &network.ServerMessage{
		Type:    network.MsgTypeHarvestDrops,
		Payload: network.HarvestDropsPayload{Crop: p.Crop, Drops: drops},
	}
}

func refreshed(shops []string, w *world.Snapshot) *network.ServerMessage {
	return &network.ServerMessage{
		Type:    network.MsgTypeStocksRefreshed,
		Payload: network.StocksRefreshedPayload{Shops: shops, Day: w.DaysPlayed},
	}
}

func errorMessage(code, message string) *network.ServerMessage {
	return &network.ServerMessage{
		Type:    network.MsgTypeError,
		Payload: network.ErrorPayload{Code: code, Message: message},
	}
}

// decode accepts an absent payload as the zero value
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
