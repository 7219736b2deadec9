package stock

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/random"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Checker evaluates condition lists.
type Checker interface {
	Check(exprs []string, w *world.Snapshot) bool
}

// Assembler builds listings against one catalog. It holds no per-call state
// and may be shared.
type Assembler struct {
	catalog    *catalog.Catalog
	conditions Checker
	monitor    *logging.Monitor
}

// NewAssembler constructs an assembler.
func NewAssembler(c *catalog.Catalog, conditions Checker, m *logging.Monitor) *Assembler {
	return &Assembler{catalog: c, conditions: conditions, monitor: m}
}

// RandFor returns the generator a stock uses for the day described by w.
func RandFor(s *Stock, w *world.Snapshot) *rand.Rand {
	return random.ForKey(w.GameID, w.DaysPlayed, fmt.Sprintf("%s#%d", s.Shop, s.Index))
}

// Assemble resolves every applicable rule of s into entries. The first rule
// to add an item wins. When the result exceeds the stock's cap a uniform
// random subset of exactly the cap survives, in insertion order. A failing
// stock condition yields an empty listing.
func (a *Assembler) Assemble(s *Stock, w *world.Snapshot, rng *rand.Rand) Listing {
	if w == nil {
		w = &world.Snapshot{}
	}
	if s == nil || !a.conditions.Check(s.When, w) {
		return Listing{}
	}
	if !s.ItemType.Valid() {
		a.monitor.LogOnce(logging.Warn, "%s: %q is not a valid item type, no items from stock %d will be added", s.Shop, s.ItemType, s.Index)
		return Listing{}
	}

	quality := s.Quality
	if !ValidQuality(quality) {
		quality = 0
	}
	conditional := pricing.ResolveMultiplier(s.PriceMultipliers, func(when []string) bool {
		return a.conditions.Check(when, w)
	})
	base := orOne(s.SellPriceMultiplier) * conditional

	var entries []Entry
	seen := make(map[catalog.Key]struct{})
	for ri := range s.Rules {
		r := &s.Rules[ri]
		if !a.conditions.Check(r.When, w) {
			continue
		}
		override := s.Price
		if r.Price != nil {
			override = r.Price
		}
		currency := s.Currency
		if r.Currency != nil {
			currency = r.Currency
		}
		multiplier := base
		if r.PriceMultiplier != nil {
			multiplier *= *r.PriceMultiplier
		}

		for _, ref := range r.References {
			items, err := a.catalog.Expand(ref, r.Exclude)
			if err != nil {
				a.monitor.Tracef("%s: %v could not be added", s.Shop, err)
				continue
			}
			for _, item := range items {
				if _, dup := seen[item.Key()]; dup {
					continue
				}
				if !a.admit(s, item, w) {
					continue
				}
				e := Entry{
					Item:     item,
					Price:    pricing.Price(item.Price, multiplier, override),
					Quality:  quality,
					IsRecipe: s.IsRecipe,
				}
				if s.IsRecipe {
					e.Quantity = 1
				} else {
					e.Quantity = a.quantity(s.Quantity, w, rng)
				}
				if currency != nil {
					c := *currency
					e.Currency = &c
				}
				seen[item.Key()] = struct{}{}
				entries = append(entries, e)
				a.monitor.Debugf("Adding %s %q to %s", item.Type, item.Name, s.Shop)
			}
		}
	}

	if s.MaxEntries > 0 && len(entries) > s.MaxEntries {
		entries = sample(entries, s.MaxEntries, rng)
	}
	return NewListing(entries)
}

func (a *Assembler) admit(s *Stock, item catalog.Descriptor, w *world.Snapshot) bool {
	if s.ItemType == catalog.Seed && s.FilterSeedsBySeason && !item.InSeason(string(w.Season)) {
		return false
	}
	if s.IsRecipe && !a.catalog.IsRecipe(item.Name) {
		a.monitor.Tracef("%s: %q is not a valid recipe and won't be added", s.Shop, item.Name)
		return false
	}
	return true
}

func (a *Assembler) quantity(q QuantitySpec, w *world.Snapshot, rng *rand.Rand) int {
	level := 0
	if q.Skill != "" {
		level = w.Player.SkillLevel(q.Skill)
	}
	return pricing.Quantity(q.Min, q.Max, q.LevelBonus, level, rng)
}

// sample keeps exactly n entries chosen uniformly with a partial
// Fisher-Yates shuffle over indices.
func sample(entries []Entry, n int, rng *rand.Rand) []Entry {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	keep := idx[:n]
	sort.Ints(keep)
	out := make([]Entry, n)
	for i, k := range keep {
		out[i] = entries[k]
	}
	return out
}
