// Package harvest computes the extra items a crop drops when harvested.
package harvest

import (
	"fmt"
	"math"
	"sync"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/random"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Rule adds one kind of extra drop to a crop.
type Rule struct {
	ItemName                          string           `json:"ItemName" yaml:"ItemName"`
	ExtraYieldItemType                catalog.ItemType `json:"ExtraYieldItemType" yaml:"ExtraYieldItemType"`
	MinHarvest                        int              `json:"minHarvest" yaml:"minHarvest"`
	MaxHarvest                        int              `json:"maxHarvest" yaml:"maxHarvest"`
	MaxHarvestIncreasePerFarmingLevel float64          `json:"maxHarvestIncreasePerFarmingLevel,omitempty" yaml:"maxHarvestIncreasePerFarmingLevel,omitempty"`
	// DisableWithMods skips the rule when any of these packs is loaded.
	DisableWithMods []string `json:"disableWithMods,omitempty" yaml:"disableWithMods,omitempty"`
}

// CropRules groups the rules of one crop.
type CropRules struct {
	CropName     string `json:"CropName" yaml:"CropName"`
	HarvestRules []Rule `json:"HarvestRules" yaml:"HarvestRules"`
}

// Tile is a position on a farm map.
type Tile struct {
	X, Y int
}

// Drop is one harvested item.
type Drop struct {
	Item    catalog.Descriptor `json:"item"`
	Quality int                `json:"quality"`
}

// Table holds harvest rules by crop name.
type Table struct {
	catalog *catalog.Catalog
	monitor *logging.Monitor

	mu    sync.RWMutex
	rules map[string][]Rule
}

// NewTable constructs an empty table resolving items against c.
func NewTable(c *catalog.Catalog, m *logging.Monitor) *Table {
	return &Table{catalog: c, monitor: m, rules: make(map[string][]Rule)}
}

// Add appends rules for a crop. Rules disabled by a loaded pack are skipped.
func (t *Table) Add(crop string, rules []Rule, loaded func(pack string) bool) int {
	added := 0
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range rules {
		if skip := disabledBy(r, loaded); skip != "" {
			t.monitor.Tracef("A rule was skipped for %s because %s was found", crop, skip)
			continue
		}
		if r.ExtraYieldItemType == "" {
			r.ExtraYieldItemType = catalog.Object
		}
		t.rules[crop] = append(t.rules[crop], r)
		added++
	}
	return added
}

func disabledBy(r Rule, loaded func(string) bool) string {
	if loaded == nil {
		return ""
	}
	for _, p := range r.DisableWithMods {
		if loaded(p) {
			return p
		}
	}
	return ""
}

// Rules returns the rules registered for a crop.
func (t *Table) Rules(crop string) []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Rule(nil), t.rules[crop]...)
}

// Crops returns the number of crops with rules.
func (t *Table) Crops() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// Spawn rolls the extra drops for harvesting crop at tile. Draws are fixed
// for a given game, day and tile. Higher farming levels and fertilizer raise
// the chance of silver and gold quality.
func (t *Table) Spawn(crop string, fertilizer int, tile Tile, w *world.Snapshot) []Drop {
	rules := t.Rules(crop)
	if len(rules) == 0 {
		return nil
	}
	if w == nil {
		w = &world.Snapshot{}
	}
	rng := random.ForKey(w.GameID, w.DaysPlayed, fmt.Sprintf("harvest:%d,%d", tile.X, tile.Y))
	farming := w.Player.SkillLevel("Farming")
	high, low := QualityChances(farming, fertilizer)

	var drops []Drop
	for _, r := range rules {
		item, err := t.catalog.Resolve(catalog.NameRef(r.ExtraYieldItemType, r.ItemName))
		if err != nil {
			t.monitor.LogOnce(logging.Warn, "No idea what %s %s is: %v", r.ExtraYieldItemType, r.ItemName, err)
			continue
		}
		bonus := r.MaxHarvestIncreasePerFarmingLevel
		if bonus < 0 {
			bonus = 0
		}
		n := pricing.Quantity(r.MinHarvest, r.MaxHarvest, bonus, farming, rng)
		for i := 0; i < n; i++ {
			q := 0
			if item.Type.Namespace() == catalog.Object && item.Type != catalog.Ring {
				switch {
				case rng.Float64() < high:
					q = 2
				case rng.Float64() < low:
					q = 1
				}
			}
			drops = append(drops, Drop{Item: item, Quality: q})
		}
	}
	return drops
}

// QualityChances returns the chance of gold and of silver quality for a
// farming level and fertilizer tier.
func QualityChances(farmingLevel, fertilizer int) (high, low float64) {
	lvl := float64(farmingLevel)
	high = 0.2*(lvl/10.0) + 0.2*float64(fertilizer)*((lvl+2.0)/12.0) + 0.01
	low = math.Min(0.75, high*2.0)
	return high, low
}
