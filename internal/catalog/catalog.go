package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateItem is returned when a name is registered twice in the same
	// namespace. The first registration is kept.
	ErrDuplicateItem = errors.New("catalog: item already registered")
	// ErrIDCollision is returned when an explicit id is already owned by a
	// different item.
	ErrIDCollision = errors.New("catalog: numeric id already assigned to another item")
)

type idKey struct {
	ns ItemType
	id int
}

// Builder collects descriptors from the base game and every content pack.
// It is not safe for concurrent use; call Build once loading is complete.
type Builder struct {
	items   []Descriptor
	names   map[Key]int
	ids     map[idKey]Key
	recipes map[string]struct{}
}

// NewBuilder constructs an empty builder, optionally seeded with base items.
func NewBuilder(base ...Descriptor) *Builder {
	b := &Builder{
		names:   make(map[Key]int, len(base)),
		ids:     make(map[idKey]Key, len(base)),
		recipes: make(map[string]struct{}),
	}
	for _, d := range base {
		_ = b.Add(d) // first registration wins during seed
	}
	return b
}

// Add registers a descriptor. A zero id is assigned during Build.
func (b *Builder) Add(d Descriptor) error {
	if d.Name == "" {
		return errors.New("catalog: item missing name")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("catalog: item %q has unknown type %q", d.Name, d.Type)
	}
	if d.ID < 0 {
		return fmt.Errorf("catalog: item %q has negative id", d.Name)
	}
	key := d.Key()
	if _, exists := b.names[key]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateItem, key.Type, d.Name)
	}
	if d.ID != 0 {
		ik := idKey{ns: key.Type, id: d.ID}
		if owner, taken := b.ids[ik]; taken {
			return fmt.Errorf("%w: %d is %q, not %q", ErrIDCollision, d.ID, owner.Name, d.Name)
		}
		b.ids[ik] = key
	}
	b.names[key] = len(b.items)
	b.items = append(b.items, d)
	return nil
}

// AddRecipe records names of craftable recipes that may be sold.
func (b *Builder) AddRecipe(names ...string) {
	for _, n := range names {
		if n != "" {
			b.recipes[n] = struct{}{}
		}
	}
}

// Build freezes the collected descriptors into a read-only catalog. Items
// without an id receive one above the highest id of their namespace in
// registration order.
func (b *Builder) Build() *Catalog {
	next := make(map[ItemType]int)
	for ik := range b.ids {
		if ik.id > next[ik.ns] {
			next[ik.ns] = ik.id
		}
	}

	c := &Catalog{
		byName:  make(map[Key]Descriptor, len(b.items)),
		byID:    make(map[idKey]Descriptor, len(b.items)),
		byPack:  make(map[string][]Descriptor),
		names:   make(map[ItemType][]string),
		recipes: make(map[string]struct{}, len(b.recipes)),
	}
	for _, d := range b.items {
		d.Seasons = append([]string(nil), d.Seasons...)
		key := d.Key()
		if d.ID == 0 {
			next[key.Type]++
			d.ID = next[key.Type]
		}
		c.byName[key] = d
		c.byID[idKey{ns: key.Type, id: d.ID}] = d
		if d.Pack != "" {
			c.byPack[d.Pack] = append(c.byPack[d.Pack], d)
		}
		c.names[key.Type] = append(c.names[key.Type], d.Name)
		c.size++
	}
	for n := range b.recipes {
		c.recipes[n] = struct{}{}
	}
	return c
}

// Catalog is the immutable set of known items. All methods are safe for
// concurrent use.
type Catalog struct {
	byName  map[Key]Descriptor
	byID    map[idKey]Descriptor
	byPack  map[string][]Descriptor
	names   map[ItemType][]string
	recipes map[string]struct{}
	size    int
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

// Lookup finds an item by exact name within the namespace of t.
func (c *Catalog) Lookup(t ItemType, name string) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	d, ok := c.byName[Key{Type: t.Namespace(), Name: name}]
	return d, ok
}

// LookupID finds an item by numeric id within the namespace of t.
func (c *Catalog) LookupID(t ItemType, id int) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	d, ok := c.byID[idKey{ns: t.Namespace(), id: id}]
	return d, ok
}

// PackItems returns the items declared by a pack in registration order.
func (c *Catalog) PackItems(pack string) []Descriptor {
	if c == nil {
		return nil
	}
	return append([]Descriptor(nil), c.byPack[pack]...)
}

// Packs returns the ids of every pack that declared at least one item.
func (c *Catalog) Packs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.byPack))
	for p := range c.byPack {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsRecipe reports whether name is a known recipe.
func (c *Catalog) IsRecipe(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.recipes[name]
	return ok
}
