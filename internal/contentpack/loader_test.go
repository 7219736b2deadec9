package contentpack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/condition"
	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
	"github.com/gravitas-games/shoptiles/internal/world"
)

func writePack(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for file, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
	}
	return dir
}

func manifest(id string) string {
	return `{"Name": "Test", "Author": "tester", "Version": "1.0.0", "UniqueID": "` + id + `"}`
}

const shopsJSON = `{
  "Shops": [
    {
      "ShopName": "Tool Stall",
      "StoreCurrency": "clubCoins",
      "Price": -1,
      "DefaultSellPriceMultiplier": 2,
      "PriceMultiplierWhen": [{"Multiplier": 0.5, "When": ["weather rainy"]}],
      "Preconditions": ["z winter"],
      "ClosedMessage": "Closed for winter.",
      "ItemStocks": [
        {
          "ItemType": "Object",
          "ItemNames": ["Parsnip", "Hay"],
          "StockItemCurrency": "Hay",
          "Rules": [
            {"Name": "bundle", "ItemIDs": [24], "Price": 5, "PriceMultiplier": 0, "Preconditions": ["r 0.5"]}
          ]
        },
        {"StockPrice": 10, "ItemNames": ["Hay"]},
        {
          "itemtype": "Seed",
          "jaPacks": ["test.seeds"],
          "ExcludeFromJAPacks": ["Blue Seeds"],
          "MinStock": 2,
          "MaxStock": 4,
          "FilterSeedsBySeason": false
        }
      ]
    },
    {"Quote": "nameless"}
  ],
  "VanillaShops": [
    {"ShopName": "SeedShop", "ItemStocks": [{"ItemType": "Object", "ItemNames": ["Hay"], "Stock": 3}]}
  ]
}`

func TestLoadDecodesShops(t *testing.T) {
	dir := writePack(t, t.TempDir(), "stall", map[string]string{
		"manifest.json": manifest("test.stall"),
		"shops.json":    shopsJSON,
	})
	p, errs := NewLoader(logging.Discard()).Load(dir)
	require.NotNil(t, p)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.True(t, errors.Is(err, ErrMissingField), "%v", err)
	}

	require.Len(t, p.Shops, 1)
	def := p.Shops[0]
	assert.Equal(t, "Tool Stall", def.Name)
	assert.Equal(t, "test.stall", def.Pack)
	assert.Equal(t, shop.ClubCoins, def.StoreCurrency)
	assert.Nil(t, def.Price, "a negative price is unset")
	assert.Equal(t, 2.0, def.DefaultSellPriceMultiplier)
	assert.Equal(t, []pricing.Multiplier{{Value: 0.5, When: []string{"weather rainy"}}}, def.PriceMultipliers)
	assert.Equal(t, []string{"!season winter"}, def.When)

	require.Len(t, def.Stocks, 2, "the stock without an item type is skipped")
	first := def.Stocks[0]
	assert.Equal(t, stock.QuantitySpec{Min: pricing.Unlimited, Max: pricing.Unlimited}, first.Quantity)
	assert.True(t, first.FilterSeedsBySeason)
	assert.Equal(t, &stock.Currency{Item: "Hay", Stack: 1}, first.Currency)
	require.Len(t, first.Rules, 2)
	assert.Equal(t, []catalog.Reference{
		catalog.NameRef(catalog.Object, "Parsnip"),
		catalog.NameRef(catalog.Object, "Hay"),
	}, first.Rules[0].References)
	bundle := first.Rules[1]
	assert.Equal(t, "bundle", bundle.Name)
	assert.Equal(t, []catalog.Reference{catalog.IDRef(catalog.Object, 24)}, bundle.References)
	assert.Equal(t, 5, *bundle.Price)
	require.NotNil(t, bundle.PriceMultiplier, "an explicit zero multiplier is kept")
	assert.Equal(t, 0.0, *bundle.PriceMultiplier)
	assert.Nil(t, first.Rules[0].PriceMultiplier)
	assert.Equal(t, []string{`random 0.5 "Tool Stall#0/0"`}, bundle.When)

	seeds := def.Stocks[1]
	assert.Equal(t, catalog.Seed, seeds.ItemType, "field names are case-insensitive")
	assert.Equal(t, stock.QuantitySpec{Min: 2, Max: 4}, seeds.Quantity)
	assert.False(t, seeds.FilterSeedsBySeason)
	assert.Equal(t, []string{"Blue Seeds"}, seeds.Rules[0].Exclude)
	assert.Equal(t, []catalog.Reference{catalog.PackRef(catalog.Seed, "test.seeds", "")}, seeds.Rules[0].References)

	require.Len(t, p.VanillaShops, 1)
	assert.Equal(t, "SeedShop", p.VanillaShops[0].Shop)
	assert.Equal(t, stock.Fixed(3), p.VanillaShops[0].Stocks[0].Quantity)
}

func TestLoadYAMLAndHarvestRules(t *testing.T) {
	dir := writePack(t, t.TempDir(), "yaml", map[string]string{
		"manifest.json": manifest("test.yaml"),
		"items.yaml": `
Items:
  - Name: Blue Seeds
    Category: Seeds
    Price: 20
    Seasons: [spring]
  - Name: Blue Sword
    Type: Weapon
  - Name: Broken
    Type: Spaceship
Recipes: [Blue Cake]
`,
		"shops.yml": `
Shops:
  - ShopName: Blue Stand
    When: ["season spring"]
    ItemStocks:
      - ItemType: Object
        ItemNames: [Blue Seeds]
        Stock: 7
`,
		"HarvestRules.json": `{"Harvests": [{"CropName": "Parsnip", "HarvestRules": [{"ItemName": "Fiber", "minHarvest": 1, "maxHarvest": 2}]}, {"HarvestRules": []}]}`,
	})
	p, errs := NewLoader(logging.Discard()).Load(dir)
	require.NotNil(t, p)
	require.Len(t, errs, 2, "invalid item type and missing crop name")

	require.Len(t, p.Items, 2)
	assert.Equal(t, catalog.Object, p.Items[0].Type)
	assert.Equal(t, "test.yaml", p.Items[0].Pack)
	assert.Equal(t, []string{"spring"}, p.Items[0].Seasons)
	assert.Equal(t, []string{"Blue Cake"}, p.Recipes)

	require.Len(t, p.Shops, 1)
	assert.Equal(t, []string{"season spring"}, p.Shops[0].When)
	assert.Equal(t, stock.Fixed(7), p.Shops[0].Stocks[0].Quantity)

	require.Len(t, p.Harvest, 1)
	assert.Equal(t, []harvest.Rule{{ItemName: "Fiber", MinHarvest: 1, MaxHarvest: 2}}, p.Harvest[0].HarvestRules)
}

func TestBrokenFileDoesNotStopOtherFiles(t *testing.T) {
	dir := writePack(t, t.TempDir(), "broken", map[string]string{
		"manifest.json": manifest("test.broken"),
		"items.json":    `{"Items": [`,
		"shops.json":    `{"Shops": [{"ShopName": "Still Here"}]}`,
	})
	p, errs := NewLoader(logging.Discard()).Load(dir)
	require.NotNil(t, p)
	require.Len(t, errs, 1)
	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, filepath.Join(dir, "items.json"), le.Path)
	assert.Empty(t, p.Items)
	require.Len(t, p.Shops, 1)
	assert.Equal(t, "Still Here", p.Shops[0].Name)
}

func TestInvalidManifestRejectsPack(t *testing.T) {
	root := t.TempDir()
	noID := writePack(t, root, "noid", map[string]string{"manifest.json": `{"Name": "No id"}`})
	p, errs := NewLoader(logging.Discard()).Load(noID)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrMissingField))

	p, errs = NewLoader(logging.Discard()).Load(filepath.Join(root, "absent"))
	assert.Nil(t, p)
	var le *LoadError
	assert.True(t, errors.As(errs[0], &le))
}

func TestUntranslatablePreconditionNeverHolds(t *testing.T) {
	dir := writePack(t, t.TempDir(), "legacy", map[string]string{
		"manifest.json": manifest("test.legacy"),
		"shops.json":    `{"Shops": [{"ShopName": "Odd", "Preconditions": ["x some_letter"]}]}`,
	})
	p, _ := NewLoader(logging.Discard()).Load(dir)
	require.NotNil(t, p)
	assert.Equal(t, []string{"false"}, p.Shops[0].When)
}

func TestLoadAllScansDirectoriesAndRejectsDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "a", map[string]string{"manifest.json": manifest("test.a")})
	writePack(t, root, "b", map[string]string{"manifest.json": manifest("Test.A")})
	writePack(t, root, "c", map[string]string{"manifest.json": manifest("test.c")})
	writePack(t, root, "notes", map[string]string{"readme.txt": "not a pack"})

	set, errs := NewLoader(logging.Discard()).LoadAll([]string{root, filepath.Join(root, "missing")})
	assert.Equal(t, []string{"test.a", "test.c"}, set.IDs())
	assert.Len(t, errs, 2)
	assert.True(t, set.Loaded("TEST.C"))
	assert.False(t, set.Loaded("test.b"))
}

func TestInstallEndToEnd(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "stall", map[string]string{
		"manifest.json": manifest("test.stall"),
		"items.json":    `{"Items": [{"Name": "Blue Seeds", "Category": "Seeds", "Price": 20}]}`,
		"shops.json": `{
  "Shops": [{"ShopName": "Blue Stand", "ItemStocks": [
    {"ItemType": "Object", "ItemNames": ["Blue Seeds"], "StockItemCurrency": "Hay", "StockCurrencyStack": 2, "Stock": 5}
  ]}],
  "VanillaShops": [
    {"ShopName": "Blue Stand", "ItemStocks": [{"ItemType": "Object", "ItemNames": ["Hay"], "Stock": 1}]},
    {"ShopName": "SeedShop", "ItemStocks": [{"ItemType": "Object", "ItemNames": ["Blue Seeds"]}]}
  ]
}`,
		"HarvestRules.json": `{"Harvests": [{"CropName": "Parsnip", "HarvestRules": [
  {"ItemName": "Blue Seeds", "minHarvest": 1, "maxHarvest": 1},
  {"ItemName": "Hay", "minHarvest": 1, "maxHarvest": 1, "disableWithMods": ["test.stall"]}
]}]}`,
	})
	m := logging.Discard()
	set, errs := NewLoader(m).LoadAll([]string{root})
	require.Empty(t, errs)

	cat, errs := set.Catalog(catalog.Descriptor{ID: 178, Name: "Hay", Type: catalog.Object, Price: 50})
	require.Empty(t, errs)
	seeds, ok := cat.Lookup(catalog.Object, "Blue Seeds")
	require.True(t, ok)
	assert.Equal(t, 179, seeds.ID)

	eval := condition.NewEvaluator(m)
	reg := shop.NewRegistry(stock.NewAssembler(cat, eval, m), eval, m)
	require.Empty(t, set.Install(reg, cat))
	assert.Equal(t, []string{"Blue Stand", "SeedShop"}, reg.Names())

	w := &world.Snapshot{GameID: 3, Year: 1, Season: world.Spring, DayOfMonth: 1, DaysPlayed: 1}
	o, err := reg.Open("Blue Stand", w, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Seeds", "Hay"}, o.Listing.Names())
	e, _ := o.Listing.Lookup(catalog.Object, "Blue Seeds")
	assert.Equal(t, &stock.Currency{Item: "Hay", ID: 178, Stack: 2}, e.Currency)
	assert.Equal(t, 5, e.Quantity)

	vanilla, err := reg.Open("SeedShop", w, false)
	require.NoError(t, err)
	sold, _ := vanilla.Listing.Lookup(catalog.Object, "Blue Seeds")
	assert.Equal(t, pricing.Unlimited, sold.Quantity)

	tbl := harvest.NewTable(cat, m)
	assert.Equal(t, 1, set.Harvest(tbl))
}
