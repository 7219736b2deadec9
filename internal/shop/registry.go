package shop

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/stock"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Registry stores shops by name and provides thread-safe refresh and open
// operations. A refresh replaces a shop's view with a new value; views
// already handed out are left untouched.
type Registry struct {
	mu    sync.RWMutex
	shops map[string]*Shop
	order []string

	// refreshMu serializes refreshes so two triggers never assemble the
	// same shop at once.
	refreshMu sync.Mutex

	assembler  *stock.Assembler
	conditions stock.Checker
	monitor    *logging.Monitor
	events     EventBus
	now        func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithEventBus publishes registry events to bus.
func WithEventBus(bus EventBus) Option {
	return func(r *Registry) { r.events = bus }
}

// WithClock overrides the time source used for refresh timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry constructs an empty registry.
func NewRegistry(a *stock.Assembler, conditions stock.Checker, m *logging.Monitor, opts ...Option) *Registry {
	r := &Registry{
		shops:      make(map[string]*Shop),
		assembler:  a,
		conditions: conditions,
		monitor:    m,
		events:     NullEventBus{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a shop definition. The shop is Loaded until its first refresh.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return errors.New("shop: definition missing name")
	}
	def = r.prepare(def)

	r.mu.Lock()
	if _, exists := r.shops[def.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicate, def.Name)
	}
	s := &Shop{Definition: def, State: Loaded}
	r.shops[def.Name] = s
	r.order = append(r.order, def.Name)
	r.mu.Unlock()

	r.monitor.Debugf("Registered shop %q with %d stocks", def.Name, len(def.Stocks))
	r.publish(EventRegistered, s)
	return nil
}

// AddStocks appends stocks to an already registered shop. They take effect
// on the next refresh.
func (r *Registry) AddStocks(name string, stocks []stock.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.shops[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	def := cur.Definition
	def.Stocks = append(append([]stock.Stock(nil), def.Stocks...), stocks...)
	def = r.prepare(def)
	next := *cur
	next.Definition = def
	r.shops[name] = &next
	return nil
}

// prepare copies the definition and fills each stock with the values it
// inherits from its shop.
func (r *Registry) prepare(def Definition) Definition {
	if def.StoreCurrency == "" {
		def.StoreCurrency = Money
	}
	def.When = append([]string(nil), def.When...)
	def.CategoriesToSellHere = append([]string(nil), def.CategoriesToSellHere...)
	def.PriceMultipliers = append([]pricing.Multiplier(nil), def.PriceMultipliers...)

	stocks := make([]stock.Stock, len(def.Stocks))
	for i, st := range def.Stocks {
		st.Shop = def.Name
		st.Index = i
		if st.Price == nil && def.Price != nil {
			p := *def.Price
			st.Price = &p
		}
		if st.SellPriceMultiplier == 0 {
			st.SellPriceMultiplier = def.DefaultSellPriceMultiplier
		}
		if len(st.PriceMultipliers) == 0 {
			st.PriceMultipliers = def.PriceMultipliers
		}
		if !stock.ValidQuality(st.Quality) {
			r.monitor.Warnf("%s: item quality can only be 0, 1, 2 or 4, got %d. Defaulting to 0", def.Name, st.Quality)
			st.Quality = 0
		}
		st.Rules = append([]stock.Rule(nil), st.Rules...)
		st.When = append([]string(nil), st.When...)
		stocks[i] = st
	}
	def.Stocks = stocks
	return def
}

// Get returns the current view of a shop.
func (r *Registry) Get(name string) (*Shop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shops[name]
	return s, ok
}

// Names returns registered shop names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered shops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// RefreshAll regenerates every shop's stock for w. Shops are independent, a
// shop's refresh never observes another's.
func (r *Registry) RefreshAll(w *world.Snapshot) {
	for _, name := range r.Names() {
		if err := r.Refresh(name, w); err != nil {
			r.monitor.Warnf("refresh %q: %v", name, err)
		}
	}
}

// Refresh regenerates one shop's stock and resets its opened-today flag.
func (r *Registry) Refresh(name string, w *world.Snapshot) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	_, err := r.refreshLocked(name, w)
	return err
}

func (r *Registry) refreshLocked(name string, w *world.Snapshot) (*Shop, error) {
	cur, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if w == nil {
		w = &world.Snapshot{}
	}
	r.monitor.Debugf("Generating stock for %s", name)

	def := cur.Definition
	var listing stock.Listing
	for i := range def.Stocks {
		st := &def.Stocks[i]
		listing = listing.Merge(r.assembler.Assemble(st, w, stock.RandFor(st, w)))
	}
	next := &Shop{
		Definition:  def,
		State:       Stocked,
		Listing:     listing,
		Day:         w.DaysPlayed,
		RefreshedAt: r.now(),
	}

	r.mu.Lock()
	if latest, ok := r.shops[name]; ok && len(latest.Definition.Stocks) != len(def.Stocks) {
		// Stocks were added while assembling; keep the newer definition.
		next.Definition = latest.Definition
	}
	r.shops[name] = next
	r.mu.Unlock()

	r.publish(EventRefreshed, next)
	return next, nil
}

// Open answers a request to open a shop. A failing shop condition yields a
// Closed opening carrying the closed message; debug skips the check. A shop
// that was never refreshed is refreshed first.
func (r *Registry) Open(name string, w *world.Snapshot, debug bool) (Opening, error) {
	cur, ok := r.Get(name)
	if !ok {
		return Opening{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.monitor.Tracef("Attempting to open the shop %q", name)
	def := cur.Definition

	if !debug && !r.conditions.Check(def.When, w) {
		r.publish(EventClosed, cur)
		return Opening{Shop: name, Outcome: Closed, ClosedMessage: def.ClosedMessage}, nil
	}

	if cur.State != Stocked {
		r.refreshMu.Lock()
		if latest, _ := r.Get(name); latest != nil && latest.State == Stocked {
			cur = latest
		} else {
			var err error
			if cur, err = r.refreshLocked(name, w); err != nil {
				r.refreshMu.Unlock()
				return Opening{}, err
			}
		}
		r.refreshMu.Unlock()
	}

	first := false
	r.mu.Lock()
	if latest := r.shops[name]; latest != nil && !latest.OpenedToday {
		next := *latest
		next.OpenedToday = true
		r.shops[name] = &next
		cur = &next
		first = true
	}
	r.mu.Unlock()

	r.publish(EventOpened, cur)
	return Opening{
		Shop:       name,
		Outcome:    Open,
		Listing:    cur.Listing,
		Currency:   def.StoreCurrency,
		Quote:      def.Quote,
		Categories: append([]string(nil), def.CategoriesToSellHere...),
		FirstToday: first,
	}, nil
}

func (r *Registry) publish(t EventType, s *Shop) {
	r.events.Publish(Event{Type: t, Shop: s, Timestamp: r.now()})
}
