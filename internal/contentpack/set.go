package contentpack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
)

// Set is the ordered list of loaded packs.
type Set []*Pack

// Loaded reports whether a pack with the given unique id is in the set.
func (s Set) Loaded(id string) bool {
	for _, p := range s {
		if strings.EqualFold(p.ID(), id) {
			return true
		}
	}
	return false
}

// IDs returns the unique ids of the set in load order.
func (s Set) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID()
	}
	return ids
}

// Catalog builds the item catalog from base items followed by every pack's
// items. Rejected items are reported and skipped.
func (s Set) Catalog(base ...catalog.Descriptor) (*catalog.Catalog, []error) {
	b := catalog.NewBuilder(base...)
	var errs []error
	for _, p := range s {
		for _, d := range p.Items {
			if err := b.Add(d); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
			}
		}
		b.AddRecipe(p.Recipes...)
	}
	return b.Build(), errs
}

// Install registers every pack's shops, then applies additions to other
// shops. An addition to a shop nobody registered creates it.
func (s Set) Install(r *shop.Registry, c *catalog.Catalog) []error {
	var errs []error
	for _, p := range s {
		for _, def := range p.Shops {
			def.Stocks = withCurrencyIDs(c, def.Stocks)
			if err := r.Register(def); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
			}
		}
	}
	for _, p := range s {
		for _, ext := range p.VanillaShops {
			stocks := withCurrencyIDs(c, ext.Stocks)
			err := r.AddStocks(ext.Shop, stocks)
			if errors.Is(err, shop.ErrNotFound) {
				err = r.Register(shop.Definition{Name: ext.Shop, Pack: ext.Pack, Stocks: stocks})
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
			}
		}
	}
	return errs
}

// Harvest adds every pack's harvest rules to t. Rules disabled by a pack in
// this set are skipped.
func (s Set) Harvest(t *harvest.Table) int {
	n := 0
	for _, p := range s {
		for _, cr := range p.Harvest {
			n += t.Add(cr.CropName, cr.HarvestRules, s.Loaded)
		}
	}
	return n
}

// withCurrencyIDs fills in the object id of every trade item it can resolve.
func withCurrencyIDs(c *catalog.Catalog, stocks []stock.Stock) []stock.Stock {
	out := make([]stock.Stock, len(stocks))
	for i, st := range stocks {
		st.Currency = currencyID(c, st.Currency)
		rules := make([]stock.Rule, len(st.Rules))
		for j, r := range st.Rules {
			r.Currency = currencyID(c, r.Currency)
			rules[j] = r
		}
		st.Rules = rules
		out[i] = st
	}
	return out
}

func currencyID(c *catalog.Catalog, cur *stock.Currency) *stock.Currency {
	if cur == nil {
		return nil
	}
	next := *cur
	if d, ok := c.Lookup(catalog.Object, cur.Item); ok {
		next.ID = d.ID
	}
	return &next
}
