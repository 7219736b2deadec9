// Package contentpack reads content pack directories: a manifest plus item,
// shop and harvest rule files in JSON or YAML.
package contentpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/shoptiles/internal/catalog"
	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
)

const manifestFile = "manifest.json"

var (
	itemFiles    = []string{"items.json", "items.yaml", "items.yml"}
	shopFiles    = []string{"shops.json", "shops.yaml", "shops.yml"}
	harvestFiles = []string{"HarvestRules.json", "HarvestRules.yaml", "HarvestRules.yml"}
)

// Extension adds stocks to a shop registered by someone else.
type Extension struct {
	Shop   string
	Pack   string
	Stocks []stock.Stock
}

// Pack is the decoded content of one pack directory.
type Pack struct {
	Dir          string
	Manifest     Manifest
	Items        []catalog.Descriptor
	Recipes      []string
	Shops        []shop.Definition
	VanillaShops []Extension
	Harvest      []harvest.CropRules
}

// ID returns the pack's unique id.
func (p *Pack) ID() string { return p.Manifest.UniqueID }

// Loader decodes pack directories.
type Loader struct {
	monitor *logging.Monitor
}

// NewLoader constructs a loader logging through m.
func NewLoader(m *logging.Monitor) *Loader {
	return &Loader{monitor: m}
}

// LoadAll loads every pack under the given paths. A path holding a manifest
// is a pack; any other directory is scanned one level deep for packs. Errors
// are collected and never stop the remaining packs from loading.
func (l *Loader) LoadAll(paths []string) (Set, []error) {
	var (
		set  Set
		errs []error
		seen = make(map[string]bool)
	)
	for _, root := range paths {
		dirs, err := packDirs(root)
		if err != nil {
			errs = append(errs, &LoadError{Path: root, Err: err})
			continue
		}
		for _, dir := range dirs {
			p, perrs := l.Load(dir)
			errs = append(errs, perrs...)
			if p == nil {
				continue
			}
			id := strings.ToLower(p.ID())
			if seen[id] {
				err := fmt.Errorf("duplicate pack id %q", p.ID())
				l.monitor.Warnf("%s: %v", dir, err)
				errs = append(errs, &LoadError{Path: dir, Err: err})
				continue
			}
			seen[id] = true
			set = append(set, p)
		}
	}
	return set, errs
}

func packDirs(root string) ([]string, error) {
	if _, err := os.Stat(filepath.Join(root, manifestFile)); err == nil {
		return []string{root}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Load reads one pack directory. A missing or invalid manifest rejects the
// whole pack; any other broken file or entity is skipped and reported.
func (l *Loader) Load(dir string) (*Pack, []error) {
	var manifest Manifest
	mpath := filepath.Join(dir, manifestFile)
	if err := decodeFile(mpath, &manifest); err != nil {
		l.monitor.Errorf("Could not read pack manifest %s: %v", mpath, err)
		return nil, []error{&LoadError{Path: mpath, Err: err}}
	}
	if manifest.UniqueID == "" {
		err := missing("UniqueID", mpath)
		l.monitor.Errorf("%v", err)
		return nil, []error{&LoadError{Path: mpath, Err: err}}
	}

	p := &Pack{Dir: dir, Manifest: manifest}
	l.monitor.Infof("Loading content pack %s %s by %s", manifest.Name, manifest.Version, manifest.Author)

	var errs []error
	fail := func(err error) {
		l.monitor.Warnf("%s: %v", manifest.UniqueID, err)
		errs = append(errs, err)
	}

	var items ItemsFile
	if ok, err := decodeFirst(dir, itemFiles, &items); err != nil {
		fail(err)
	} else if ok {
		for _, m := range items.Items {
			d, err := convertItem(m, manifest.UniqueID)
			if err != nil {
				fail(err)
				continue
			}
			p.Items = append(p.Items, d)
		}
		p.Recipes = items.Recipes
	}

	var shops ShopsFile
	if ok, err := decodeFirst(dir, shopFiles, &shops); err != nil {
		fail(err)
	} else if ok {
		c := converter{pack: manifest.UniqueID, monitor: l.monitor, fail: fail}
		for _, m := range shops.Shops {
			if def, ok := c.shop(m); ok {
				p.Shops = append(p.Shops, def)
			}
		}
		for _, m := range shops.VanillaShops {
			if ext, ok := c.vanilla(m); ok {
				p.VanillaShops = append(p.VanillaShops, ext)
			}
		}
	}

	var rules HarvestFile
	if ok, err := decodeFirst(dir, harvestFiles, &rules); err != nil {
		fail(err)
	} else if ok {
		for _, cr := range rules.Harvests {
			if cr.CropName == "" {
				fail(missing("CropName", filepath.Join(dir, "HarvestRules")))
				continue
			}
			p.Harvest = append(p.Harvest, cr)
		}
	}

	l.monitor.Debugf("%s: %d items, %d shops, %d shop additions, %d harvest crops",
		manifest.UniqueID, len(p.Items), len(p.Shops), len(p.VanillaShops), len(p.Harvest))
	return p, errs
}

// decodeFirst decodes the first existing file of names into v. It reports
// false when none exists.
func decodeFirst(dir string, names []string, v any) (bool, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := decodeFile(path, v); err != nil {
			return true, &LoadError{Path: path, Err: err}
		}
		return true, nil
	}
	return false, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}
