package contentpack

import (
	"fmt"
	"strings"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/condition"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
)

func convertItem(m ItemModel, pack string) (catalog.Descriptor, error) {
	if m.Name == "" {
		return catalog.Descriptor{}, missing("Name", "items")
	}
	t := catalog.ItemType(m.Type)
	if t == "" {
		t = catalog.Object
	}
	if !t.Valid() {
		return catalog.Descriptor{}, fmt.Errorf("item %q: %q is not a valid item type", m.Name, m.Type)
	}
	return catalog.Descriptor{
		ID:       m.ID,
		Name:     m.Name,
		Type:     t,
		Category: m.Category,
		Pack:     pack,
		Price:    m.Price,
		Seasons:  m.Seasons,
	}, nil
}

type converter struct {
	pack    string
	monitor *logging.Monitor
	fail    func(error)
}

func (c converter) shop(m ShopModel) (shop.Definition, bool) {
	if m.ShopName == "" {
		c.fail(missing("ShopName", "shops"))
		return shop.Definition{}, false
	}
	def := shop.Definition{
		Name:                 m.ShopName,
		Pack:                 c.pack,
		StoreCurrency:        c.currency(m.ShopName, m.StoreCurrency),
		Price:                optPrice(m.Price),
		PriceMultipliers:     multipliers(m.PriceMultiplierWhen),
		When:                 c.conditions(m.When, m.Preconditions, m.ShopName),
		ClosedMessage:        m.ClosedMessage,
		Quote:                m.Quote,
		CategoriesToSellHere: m.CategoriesToSellHere,
	}
	if m.DefaultSellPriceMultiplier != nil {
		def.DefaultSellPriceMultiplier = *m.DefaultSellPriceMultiplier
	}
	def.Stocks = c.stocks(m.ShopName, m.ShopName, m.ItemStocks)
	return def, true
}

func (c converter) vanilla(m VanillaShopModel) (Extension, bool) {
	if m.ShopName == "" {
		c.fail(missing("ShopName", "vanilla shops"))
		return Extension{}, false
	}
	scope := m.ShopName + "+" + c.pack
	return Extension{Shop: m.ShopName, Pack: c.pack, Stocks: c.stocks(m.ShopName, scope, m.ItemStocks)}, true
}

func (c converter) currency(shopName, s string) shop.Currency {
	switch cur := shop.Currency(s); cur {
	case "":
		return shop.Money
	case shop.Money, shop.FestivalScore, shop.ClubCoins:
		return cur
	default:
		c.monitor.Warnf("%s: %q is not a valid store currency. Defaulting to Money", shopName, s)
		return shop.Money
	}
}

func (c converter) stocks(shopName, scope string, models []StockModel) []stock.Stock {
	var out []stock.Stock
	for i, m := range models {
		where := fmt.Sprintf("%s#%d", scope, i)
		if m.ItemType == "" {
			c.fail(missing("ItemType", "stock "+where))
			continue
		}
		out = append(out, c.stock(m, where))
	}
	return out
}

func (c converter) stock(m StockModel, scope string) stock.Stock {
	t := catalog.ItemType(m.ItemType)
	st := stock.Stock{
		ItemType:            t,
		Price:               optPrice(m.StockPrice),
		Currency:            itemCurrency(m.StockItemCurrency, m.StockCurrencyStack),
		Quality:             m.Quality,
		Quantity:            quantity(m),
		MaxEntries:          m.MaxNumItemsSoldInItemStock,
		IsRecipe:            m.IsRecipe,
		FilterSeedsBySeason: m.FilterSeedsBySeason == nil || *m.FilterSeedsBySeason,
		When:                c.conditions(m.When, m.Preconditions, scope),
	}
	if m.IsRecipe {
		st.Quantity = stock.Fixed(1)
	}

	var refs []catalog.Reference
	for _, id := range m.ItemIDs {
		refs = append(refs, catalog.IDRef(t, id))
	}
	for _, name := range m.ItemNames {
		refs = append(refs, catalog.NameRef(t, name))
	}
	for _, p := range m.JAPacks {
		refs = append(refs, catalog.PackRef(t, p, ""))
	}
	if len(refs) > 0 {
		st.Rules = append(st.Rules, stock.Rule{References: refs, Exclude: m.ExcludeFromJAPacks})
	}

	for i, rm := range m.Rules {
		st.Rules = append(st.Rules, c.rule(t, rm, fmt.Sprintf("%s/%d", scope, i)))
	}
	return st
}

func (c converter) rule(t catalog.ItemType, m RuleModel, scope string) stock.Rule {
	r := stock.Rule{
		Name:            m.Name,
		Exclude:         m.Exclude,
		Price:           optPrice(m.Price),
		PriceMultiplier: m.PriceMultiplier,
		Currency:        itemCurrency(m.Currency, m.CurrencyStack),
		When:            c.conditions(m.When, m.Preconditions, scope),
	}
	for _, id := range m.ItemIDs {
		r.References = append(r.References, catalog.IDRef(t, id))
	}
	for _, name := range m.ItemNames {
		r.References = append(r.References, catalog.NameRef(t, name))
	}
	for _, p := range m.Packs {
		r.References = append(r.References, catalog.PackRef(t, p, m.Category))
	}
	return r
}

// conditions merges condition expressions with translated legacy
// preconditions. An untranslatable precondition becomes false.
func (c converter) conditions(when, legacy []string, scope string) []string {
	out := append([]string(nil), when...)
	for _, pre := range legacy {
		expr, err := condition.TranslatePrecondition(pre, scope)
		if err != nil {
			c.monitor.LogOnce(logging.Warn, "%s: could not translate precondition %q: %v", scope, pre, err)
			out = append(out, "false")
			continue
		}
		if strings.TrimSpace(expr) != "" {
			out = append(out, expr)
		}
	}
	return out
}

// quantity reads the stock size. An exact Stock wins over a range; no size
// at all means unlimited.
func quantity(m StockModel) stock.QuantitySpec {
	q := stock.QuantitySpec{LevelBonus: m.StockBonusPerLevel, Skill: m.StockSkill}
	switch {
	case m.Stock != nil:
		q.Min, q.Max = *m.Stock, *m.Stock
	case m.MinStock != nil && m.MaxStock != nil:
		q.Min, q.Max = *m.MinStock, *m.MaxStock
	case m.MinStock != nil:
		q.Min, q.Max = *m.MinStock, *m.MinStock
	case m.MaxStock != nil:
		q.Min, q.Max = *m.MaxStock, *m.MaxStock
	default:
		q.Min, q.Max = pricing.Unlimited, pricing.Unlimited
	}
	return q
}

func multipliers(models []MultiplierModel) []pricing.Multiplier {
	if len(models) == 0 {
		return nil
	}
	out := make([]pricing.Multiplier, len(models))
	for i, m := range models {
		out[i] = pricing.Multiplier{Value: m.Multiplier, When: m.When}
	}
	return out
}

// optPrice treats a negative price as unset.
func optPrice(p *int) *int {
	if p == nil || *p < 0 {
		return nil
	}
	v := *p
	return &v
}

func itemCurrency(name string, stack int) *stock.Currency {
	if name == "" {
		return nil
	}
	if stack <= 0 {
		stack = 1
	}
	return &stock.Currency{Item: name, Stack: stack}
}
