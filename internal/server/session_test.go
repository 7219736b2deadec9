package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/condition"
	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/network"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
	"github.com/gravitas-games/shoptiles/internal/store"
	"github.com/gravitas-games/shoptiles/internal/world"
	"github.com/gravitas-games/shoptiles/pkg/models"
)

var (
	admin   = &models.Player{ID: "1", Username: "admin", Permissions: models.PermissionShopAdmin, Activated: 1}
	visitor = &models.Player{ID: "2", Username: "visitor", Activated: 1}
)

type fixture struct {
	session *Session
	store   *store.MemoryStore
	bus     *shop.SimpleEventBus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithStore(t, nil)
}

// newFixtureWithStore lets wrap replace the store the session saves to.
func newFixtureWithStore(t *testing.T, wrap func(*store.MemoryStore) store.Store) fixture {
	t.Helper()
	m := logging.Discard()
	cat := catalog.NewBuilder(
		catalog.Descriptor{ID: 178, Name: "Hay", Type: catalog.Object, Price: 50},
		catalog.Descriptor{ID: 771, Name: "Fiber", Type: catalog.Object, Price: 1},
	).Build()
	eval := condition.NewEvaluator(m)
	bus := shop.NewSimpleEventBus()
	reg := shop.NewRegistry(stock.NewAssembler(cat, eval, m), eval, m, shop.WithEventBus(bus))
	hay := stock.Stock{
		ItemType: catalog.Object,
		Quantity: stock.Fixed(5),
		Rules:    []stock.Rule{{References: []catalog.Reference{catalog.NameRef(catalog.Object, "Hay")}}},
	}
	require.NoError(t, reg.Register(shop.Definition{Name: "Marnie", Quote: "Moo.", Stocks: []stock.Stock{hay}}))
	require.NoError(t, reg.Register(shop.Definition{
		Name:          "Night Market",
		When:          []string{"season winter"},
		ClosedMessage: "Only in winter.",
		Stocks:        []stock.Stock{hay},
	}))

	tbl := harvest.NewTable(cat, m)
	tbl.Add("Parsnip", []harvest.Rule{{ItemName: "Fiber", MinHarvest: 2, MaxHarvest: 2}}, nil)

	mem := store.NewMemoryStore()
	var st store.Store = mem
	if wrap != nil {
		st = wrap(mem)
	}
	s := NewSession("test", SessionOptions{
		Registry: reg,
		Events:   bus,
		World:    world.NewLive(&world.Snapshot{GameID: 1, Year: 1, Season: world.Spring, DayOfMonth: 1, DaysPlayed: 1}),
		Harvest:  tbl,
		Store:    st,
		Monitor:  m,
	})
	return fixture{session: s, store: mem, bus: bus}
}

func clientMessage(t *testing.T, typ string, payload interface{}) *network.ClientMessage {
	t.Helper()
	msg := &network.ClientMessage{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	return msg
}

func TestOpenShopReturnsStock(t *testing.T) {
	f := newFixture(t)
	reply, broadcast := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeOpenShop, network.OpenShopPayload{Shop: "Marnie"}))
	assert.Nil(t, broadcast)
	require.Equal(t, network.MsgTypeShopStock, reply.Type)
	p := reply.Payload.(network.ShopStockPayload)
	assert.Equal(t, "Marnie", p.Shop)
	assert.Equal(t, "Money", p.Currency)
	assert.Equal(t, 0, p.CurrencyCode)
	assert.Equal(t, "Moo.", p.Quote)
	assert.True(t, p.FirstToday)
	assert.Equal(t, []string{"Hay"}, p.Entries.Names())
}

func TestOpenShopClosedAndUnknown(t *testing.T) {
	f := newFixture(t)
	reply, _ := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeOpenShop, network.OpenShopPayload{Shop: "Night Market"}))
	require.Equal(t, network.MsgTypeShopClosed, reply.Type)
	assert.Equal(t, "Only in winter.", reply.Payload.(network.ShopClosedPayload).Message)

	debugger := &models.Player{ID: "3", Permissions: models.PermissionShopDebug, Activated: 1}
	reply, _ = f.session.Dispatch(debugger, clientMessage(t, network.MsgTypeOpenShop, network.OpenShopPayload{Shop: "Night Market"}))
	assert.Equal(t, network.MsgTypeShopStock, reply.Type)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeOpenShop, network.OpenShopPayload{Shop: "Nobody"}))
	require.Equal(t, network.MsgTypeError, reply.Type)
	assert.Equal(t, "shop_not_found", reply.Payload.(network.ErrorPayload).Code)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeOpenShop, nil))
	assert.Equal(t, "invalid_payload", reply.Payload.(network.ErrorPayload).Code)
}

func TestListShops(t *testing.T) {
	f := newFixture(t)
	reply, _ := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeListShops, nil))
	require.Equal(t, network.MsgTypeShopList, reply.Type)
	shops := reply.Payload.(network.ShopListPayload).Shops
	require.Len(t, shops, 2)
	assert.Equal(t, "Marnie", shops[0].Name)
	assert.Equal(t, "Loaded", shops[0].State)
}

func TestRefreshRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	reply, broadcast := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeRefresh, nil))
	assert.Nil(t, broadcast)
	assert.Equal(t, "forbidden", reply.Payload.(network.ErrorPayload).Code)

	reply, broadcast = f.session.Dispatch(admin, clientMessage(t, network.MsgTypeRefresh, network.RefreshPayload{Shop: "Marnie"}))
	require.Equal(t, network.MsgTypeStocksRefreshed, reply.Type)
	assert.Equal(t, reply, broadcast)
	assert.Equal(t, []string{"Marnie"}, reply.Payload.(network.StocksRefreshedPayload).Shops)

	reply, _ = f.session.Dispatch(admin, clientMessage(t, network.MsgTypeRefresh, network.RefreshPayload{Shop: "Nobody"}))
	assert.Equal(t, "shop_not_found", reply.Payload.(network.ErrorPayload).Code)
}

func TestRefreshedStockIsSaved(t *testing.T) {
	f := newFixture(t)
	f.session.Dispatch(admin, clientMessage(t, network.MsgTypeRefresh, nil))

	require.Eventually(t, func() bool {
		_, errA := f.store.Load(context.Background(), "Marnie")
		_, errB := f.store.Load(context.Background(), "Night Market")
		return errA == nil && errB == nil
	}, time.Second, 10*time.Millisecond)
	snap, err := f.store.Load(context.Background(), "Marnie")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Day)
	assert.Equal(t, []string{"Hay"}, snap.Listing.Names())
}

// slowStore delays each save by a random amount so saves finish out of order.
type slowStore struct {
	*store.MemoryStore
}

func (s slowStore) Save(ctx context.Context, snap store.Snapshot) error {
	time.Sleep(time.Duration(rand.IntN(3000)) * time.Microsecond)
	return s.MemoryStore.Save(ctx, snap)
}

func TestSavedStockNeverGoesBack(t *testing.T) {
	f := newFixtureWithStore(t, func(m *store.MemoryStore) store.Store { return slowStore{m} })
	for day := 1; day <= 5; day++ {
		w := network.DayStartedPayload{World: world.Snapshot{GameID: 1, Year: 1, Season: "Spring", DayOfMonth: day, DaysPlayed: day}}
		reply, _ := f.session.Dispatch(admin, clientMessage(t, network.MsgTypeDayStarted, w))
		require.Equal(t, network.MsgTypeStocksRefreshed, reply.Type)
		time.Sleep(500 * time.Microsecond)
	}

	savedDay := func() int {
		snap, err := f.store.Load(context.Background(), "Marnie")
		if err != nil {
			return 0
		}
		return snap.Day
	}
	require.Eventually(t, func() bool { return savedDay() == 5 }, 2*time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return savedDay() != 5 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestDayStartedSwapsWorld(t *testing.T) {
	f := newFixture(t)
	winter := network.DayStartedPayload{World: world.Snapshot{GameID: 1, Year: 1, Season: "Winter", DayOfMonth: 3, DaysPlayed: 87}}

	reply, _ := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeDayStarted, winter))
	assert.Equal(t, "forbidden", reply.Payload.(network.ErrorPayload).Code)

	reply, broadcast := f.session.Dispatch(admin, clientMessage(t, network.MsgTypeDayStarted, winter))
	require.Equal(t, network.MsgTypeStocksRefreshed, reply.Type)
	assert.NotNil(t, broadcast)
	p := reply.Payload.(network.StocksRefreshedPayload)
	assert.Equal(t, 87, p.Day)
	assert.Equal(t, []string{"Marnie", "Night Market"}, p.Shops)
	assert.Equal(t, world.Winter, f.session.world.Snapshot().Season)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeOpenShop, network.OpenShopPayload{Shop: "Night Market"}))
	assert.Equal(t, network.MsgTypeShopStock, reply.Type)

	bad := network.DayStartedPayload{World: world.Snapshot{Season: "monsoon"}}
	reply, _ = f.session.Dispatch(admin, clientMessage(t, network.MsgTypeDayStarted, bad))
	assert.Equal(t, "invalid_payload", reply.Payload.(network.ErrorPayload).Code)
}

func TestHarvestAndPing(t *testing.T) {
	f := newFixture(t)
	reply, _ := f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeHarvest, network.HarvestPayload{Crop: "Parsnip", X: 3, Y: 4}))
	require.Equal(t, network.MsgTypeHarvestDrops, reply.Type)
	assert.Len(t, reply.Payload.(network.HarvestDropsPayload).Drops, 2)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, network.MsgTypeHarvest, network.HarvestPayload{Crop: "Kale"}))
	assert.Empty(t, reply.Payload.(network.HarvestDropsPayload).Drops)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, network.MsgTypePing, nil))
	assert.Equal(t, network.MsgTypePong, reply.Type)

	reply, _ = f.session.Dispatch(visitor, clientMessage(t, "dance", nil))
	assert.Equal(t, "unknown_message_type", reply.Payload.(network.ErrorPayload).Code)
}
