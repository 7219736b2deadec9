// Package catalog holds every item descriptor known for a session and
// resolves the symbolic references used by shop definitions into concrete
// descriptors.
package catalog

import (
	"fmt"
	"strings"
)

// ItemType classifies items. Lookups by name and id are scoped to the
// type's namespace.
type ItemType string

const (
	Object       ItemType = "Object"
	BigCraftable ItemType = "BigCraftable"
	Clothing     ItemType = "Clothing"
	Ring         ItemType = "Ring"
	Hat          ItemType = "Hat"
	Boot         ItemType = "Boot"
	Furniture    ItemType = "Furniture"
	Weapon       ItemType = "Weapon"
	Wallpaper    ItemType = "Wallpaper"
	Floors       ItemType = "Floors"
	// Seed is sold from Object data; pack expansion picks up seeds and saplings.
	Seed ItemType = "Seed"
)

var knownTypes = map[ItemType]bool{
	Object: true, BigCraftable: true, Clothing: true, Ring: true, Hat: true,
	Boot: true, Furniture: true, Weapon: true, Wallpaper: true, Floors: true, Seed: true,
}

// Valid reports whether t is a supported item type.
func (t ItemType) Valid() bool { return knownTypes[t] }

// Namespace is the type whose data table holds items of t. Rings and seeds
// live in the object table.
func (t ItemType) Namespace() ItemType {
	switch t {
	case Seed, Ring:
		return Object
	default:
		return t
	}
}

// SeedCategory is the category pack expansion uses for Seed stocks when the
// rule does not name one.
const SeedCategory = "Seeds"

// Descriptor is the concrete description of one item.
type Descriptor struct {
	ID       int      `json:"ID" yaml:"id"`
	Name     string   `json:"Name" yaml:"name"`
	Type     ItemType `json:"Type" yaml:"type"`
	Category string   `json:"Category,omitempty" yaml:"category,omitempty"`
	// Pack is the unique id of the content pack that declared the item;
	// empty for base game items.
	Pack string `json:"Pack,omitempty" yaml:"pack,omitempty"`
	// Price is the item's base sale value.
	Price int `json:"Price" yaml:"price"`
	// Seasons restricts seeds to the seasons they can be planted in.
	Seasons []string `json:"Seasons,omitempty" yaml:"seasons,omitempty"`
}

// Key identifies an item inside a listing or catalog namespace.
type Key struct {
	Type ItemType
	Name string
}

// Key returns the namespace-qualified name of the descriptor.
func (d Descriptor) Key() Key { return Key{Type: d.Type.Namespace(), Name: d.Name} }

// InSeason reports whether a seed can be planted in the given season. Items
// without seasons are always in season.
func (d Descriptor) InSeason(season string) bool {
	if len(d.Seasons) == 0 {
		return true
	}
	for _, s := range d.Seasons {
		if strings.EqualFold(s, season) {
			return true
		}
	}
	return false
}

// RefKind tags the variant of a Reference.
type RefKind int

const (
	ByName RefKind = iota
	ByID
	ByPackAndCategory
)

// Reference is a symbolic pointer to one or more items. Only the fields of
// its Kind are meaningful.
type Reference struct {
	Kind     RefKind
	Type     ItemType
	Name     string
	ID       int
	Pack     string
	Category string
}

// NameRef references an item by exact name.
func NameRef(t ItemType, name string) Reference {
	return Reference{Kind: ByName, Type: t, Name: name}
}

// IDRef references an item by numeric id.
func IDRef(t ItemType, id int) Reference {
	return Reference{Kind: ByID, Type: t, ID: id}
}

// PackRef references every item of a type declared by a pack, optionally
// narrowed to a category.
func PackRef(t ItemType, pack, category string) Reference {
	return Reference{Kind: ByPackAndCategory, Type: t, Pack: pack, Category: category}
}

func (r Reference) String() string {
	switch r.Kind {
	case ByName:
		return fmt.Sprintf("%s named %q", r.Type, r.Name)
	case ByID:
		return fmt.Sprintf("%s with id %d", r.Type, r.ID)
	case ByPackAndCategory:
		if r.Category == "" {
			return fmt.Sprintf("all %s from %s", r.Type, r.Pack)
		}
		return fmt.Sprintf("all %s in %q from %s", r.Type, r.Category, r.Pack)
	default:
		return "unknown reference"
	}
}
