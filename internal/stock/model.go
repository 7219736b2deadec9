// Package stock turns a stock definition into the priced, capped list of
// entries a shop offers for the day.
package stock

import (
	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/pricing"
)

// Currency is an item taken in trade instead of, or in addition to, money.
type Currency struct {
	Item  string `json:"item"`
	ID    int    `json:"id,omitempty"`
	Stack int    `json:"stack"`
}

// Rule is one configured source of items within a stock.
type Rule struct {
	Name       string
	References []catalog.Reference
	// Exclude removes items by name after references are expanded.
	Exclude []string
	// Price replaces the computed price of every item the rule adds.
	Price *int
	// PriceMultiplier scales the computed price. Nil means 1.
	PriceMultiplier *float64
	Currency        *Currency
	When            []string
}

// QuantitySpec bounds the random stock size of each entry. The upper bound
// grows by LevelBonus per level of Skill.
type QuantitySpec struct {
	Min        int
	Max        int
	LevelBonus float64
	Skill      string
}

// Fixed returns a spec that always yields n.
func Fixed(n int) QuantitySpec { return QuantitySpec{Min: n, Max: n} }

// Stock is a batch of entries of one item type sharing price, currency,
// quality and an entry cap.
type Stock struct {
	Shop     string
	Index    int
	ItemType catalog.ItemType
	// Price overrides every computed price unless a rule sets its own.
	Price    *int
	Currency *Currency
	Quality  int
	Quantity QuantitySpec
	// MaxEntries caps the number of distinct entries. Zero is unlimited.
	MaxEntries          int
	IsRecipe            bool
	FilterSeedsBySeason bool
	When                []string
	Rules               []Rule
	PriceMultipliers    []pricing.Multiplier
	// SellPriceMultiplier scales item base values. Zero means 1.
	SellPriceMultiplier float64
}

// ValidQuality reports whether q is a quality the game can display.
func ValidQuality(q int) bool {
	switch q {
	case 0, 1, 2, 4:
		return true
	}
	return false
}

// Entry is one offer in a listing.
type Entry struct {
	Item     catalog.Descriptor `json:"item"`
	Price    int                `json:"price"`
	Quantity int                `json:"quantity"`
	Quality  int                `json:"quality,omitempty"`
	IsRecipe bool               `json:"isRecipe,omitempty"`
	Currency *Currency          `json:"currency,omitempty"`
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
