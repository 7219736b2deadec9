package stock

import (
	"encoding/json"

	"github.com/gravitas-games/shoptiles/internal/catalog"
)

// Listing is an ordered, read-only set of entries keyed by item type and
// name. The zero value is an empty listing.
type Listing struct {
	entries []Entry
	index   map[catalog.Key]int
}

// NewListing builds a listing from entries. Later entries with a key already
// present are dropped.
func NewListing(entries []Entry) Listing {
	l := Listing{index: make(map[catalog.Key]int, len(entries))}
	for _, e := range entries {
		k := e.Item.Key()
		if _, dup := l.index[k]; dup {
			continue
		}
		l.index[k] = len(l.entries)
		l.entries = append(l.entries, e)
	}
	return l
}

// Len returns the number of entries.
func (l Listing) Len() int { return len(l.entries) }

// Empty reports whether the listing has no entries.
func (l Listing) Empty() bool { return len(l.entries) == 0 }

// Entries returns a copy of the entries in listing order.
func (l Listing) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup finds the entry for an item by type and exact name.
func (l Listing) Lookup(t catalog.ItemType, name string) (Entry, bool) {
	i, ok := l.index[catalog.Key{Type: t.Namespace(), Name: name}]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i].clone(), true
}

// Names returns the item names in listing order.
func (l Listing) Names() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Item.Name
	}
	return out
}

// Merge returns a listing with the entries of l followed by those of other
// that l does not already hold.
func (l Listing) Merge(other Listing) Listing {
	if other.Empty() {
		return l
	}
	if l.Empty() {
		return other
	}
	all := make([]Entry, 0, len(l.entries)+len(other.entries))
	all = append(all, l.entries...)
	all = append(all, other.entries...)
	return NewListing(all)
}

func (l Listing) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *Listing) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = NewListing(entries)
	return nil
}

func (e Entry) clone() Entry {
	if e.Item.Seasons != nil {
		e.Item.Seasons = append([]string(nil), e.Item.Seasons...)
	}
	if e.Currency != nil {
		c := *e.Currency
		e.Currency = &c
	}
	return e
}
