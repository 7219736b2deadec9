package contentpack

import "github.com/gravitas-games/shoptiles/internal/harvest"

// Manifest identifies a content pack.
type Manifest struct {
	UniqueID    string `json:"UniqueID" yaml:"UniqueID" jsonschema:"required"`
	Name        string `json:"Name" yaml:"Name"`
	Version     string `json:"Version" yaml:"Version"`
	Author      string `json:"Author,omitempty" yaml:"Author,omitempty"`
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
}

// ItemsFile declares the items a pack adds to the catalog.
type ItemsFile struct {
	Items   []ItemModel `json:"Items" yaml:"Items"`
	Recipes []string    `json:"Recipes,omitempty" yaml:"Recipes,omitempty"`
}

// ItemModel is one declared item. A zero ID is assigned when the catalog is built.
type ItemModel struct {
	Name     string   `json:"Name" yaml:"Name" jsonschema:"required"`
	Type     string   `json:"Type,omitempty" yaml:"Type,omitempty"`
	ID       int      `json:"ID,omitempty" yaml:"ID,omitempty"`
	Category string   `json:"Category,omitempty" yaml:"Category,omitempty"`
	Price    int      `json:"Price,omitempty" yaml:"Price,omitempty"`
	Seasons  []string `json:"Seasons,omitempty" yaml:"Seasons,omitempty"`
}

// ShopsFile declares shops and additions to shops defined elsewhere.
type ShopsFile struct {
	Shops        []ShopModel        `json:"Shops,omitempty" yaml:"Shops,omitempty"`
	VanillaShops []VanillaShopModel `json:"VanillaShops,omitempty" yaml:"VanillaShops,omitempty"`
}

// ShopModel is the file form of a shop.
type ShopModel struct {
	ShopName                   string            `json:"ShopName" yaml:"ShopName" jsonschema:"required"`
	StoreCurrency              string            `json:"StoreCurrency,omitempty" yaml:"StoreCurrency,omitempty" jsonschema:"enum=Money,enum=festivalScore,enum=clubCoins"`
	Price                      *int              `json:"Price,omitempty" yaml:"Price,omitempty"`
	DefaultSellPriceMultiplier *float64          `json:"DefaultSellPriceMultiplier,omitempty" yaml:"DefaultSellPriceMultiplier,omitempty"`
	PriceMultiplierWhen        []MultiplierModel `json:"PriceMultiplierWhen,omitempty" yaml:"PriceMultiplierWhen,omitempty"`
	When                       []string          `json:"When,omitempty" yaml:"When,omitempty"`
	Preconditions              []string          `json:"Preconditions,omitempty" yaml:"Preconditions,omitempty"`
	ClosedMessage              string            `json:"ClosedMessage,omitempty" yaml:"ClosedMessage,omitempty"`
	Quote                      string            `json:"Quote,omitempty" yaml:"Quote,omitempty"`
	CategoriesToSellHere       []string          `json:"CategoriesToSellHere,omitempty" yaml:"CategoriesToSellHere,omitempty"`
	ItemStocks                 []StockModel      `json:"ItemStocks,omitempty" yaml:"ItemStocks,omitempty"`
}

// VanillaShopModel appends stocks to a shop this pack does not own.
type VanillaShopModel struct {
	ShopName   string       `json:"ShopName" yaml:"ShopName" jsonschema:"required"`
	ItemStocks []StockModel `json:"ItemStocks" yaml:"ItemStocks"`
}

// MultiplierModel scales prices while all of When hold.
type MultiplierModel struct {
	Multiplier float64  `json:"Multiplier" yaml:"Multiplier"`
	When       []string `json:"When,omitempty" yaml:"When,omitempty"`
}

// StockModel is the file form of one item stock. ItemIDs, ItemNames and
// JAPacks form the stock's first rule.
type StockModel struct {
	ItemType                   string      `json:"ItemType" yaml:"ItemType" jsonschema:"required"`
	StockPrice                 *int        `json:"StockPrice,omitempty" yaml:"StockPrice,omitempty"`
	StockItemCurrency          string      `json:"StockItemCurrency,omitempty" yaml:"StockItemCurrency,omitempty"`
	StockCurrencyStack         int         `json:"StockCurrencyStack,omitempty" yaml:"StockCurrencyStack,omitempty"`
	Quality                    int         `json:"Quality,omitempty" yaml:"Quality,omitempty"`
	Stock                      *int        `json:"Stock,omitempty" yaml:"Stock,omitempty"`
	MinStock                   *int        `json:"MinStock,omitempty" yaml:"MinStock,omitempty"`
	MaxStock                   *int        `json:"MaxStock,omitempty" yaml:"MaxStock,omitempty"`
	StockBonusPerLevel         float64     `json:"StockBonusPerLevel,omitempty" yaml:"StockBonusPerLevel,omitempty"`
	StockSkill                 string      `json:"StockSkill,omitempty" yaml:"StockSkill,omitempty"`
	MaxNumItemsSoldInItemStock int         `json:"MaxNumItemsSoldInItemStock,omitempty" yaml:"MaxNumItemsSoldInItemStock,omitempty"`
	IsRecipe                   bool        `json:"IsRecipe,omitempty" yaml:"IsRecipe,omitempty"`
	FilterSeedsBySeason        *bool       `json:"FilterSeedsBySeason,omitempty" yaml:"FilterSeedsBySeason,omitempty"`
	When                       []string    `json:"When,omitempty" yaml:"When,omitempty"`
	Preconditions              []string    `json:"Preconditions,omitempty" yaml:"Preconditions,omitempty"`
	ItemIDs                    []int       `json:"ItemIDs,omitempty" yaml:"ItemIDs,omitempty"`
	ItemNames                  []string    `json:"ItemNames,omitempty" yaml:"ItemNames,omitempty"`
	JAPacks                    []string    `json:"JAPacks,omitempty" yaml:"JAPacks,omitempty"`
	ExcludeFromJAPacks         []string    `json:"ExcludeFromJAPacks,omitempty" yaml:"ExcludeFromJAPacks,omitempty"`
	Rules                      []RuleModel `json:"Rules,omitempty" yaml:"Rules,omitempty"`
}

// RuleModel is one additional source of items within a stock.
type RuleModel struct {
	Name            string   `json:"Name,omitempty" yaml:"Name,omitempty"`
	ItemIDs         []int    `json:"ItemIDs,omitempty" yaml:"ItemIDs,omitempty"`
	ItemNames       []string `json:"ItemNames,omitempty" yaml:"ItemNames,omitempty"`
	Packs           []string `json:"Packs,omitempty" yaml:"Packs,omitempty"`
	Category        string   `json:"Category,omitempty" yaml:"Category,omitempty"`
	Exclude         []string `json:"Exclude,omitempty" yaml:"Exclude,omitempty"`
	Price           *int     `json:"Price,omitempty" yaml:"Price,omitempty"`
	PriceMultiplier *float64 `json:"PriceMultiplier,omitempty" yaml:"PriceMultiplier,omitempty"`
	Currency        string   `json:"Currency,omitempty" yaml:"Currency,omitempty"`
	CurrencyStack   int      `json:"CurrencyStack,omitempty" yaml:"CurrencyStack,omitempty"`
	When            []string `json:"When,omitempty" yaml:"When,omitempty"`
	Preconditions   []string `json:"Preconditions,omitempty" yaml:"Preconditions,omitempty"`
}

// HarvestFile lists extra harvest drops by crop.
type HarvestFile struct {
	Harvests []harvest.CropRules `json:"Harvests" yaml:"Harvests"`
}
