package catalog

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

// ErrUnresolvable is returned when a reference matches no known item.
var ErrUnresolvable = errors.New("catalog: unresolvable item reference")

// UnresolvableError describes a reference that matched nothing. Suggestion
// holds the closest known name when one is near enough.
type UnresolvableError struct {
	Ref        Reference
	Suggestion string
}

func (e *UnresolvableError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %q?)", ErrUnresolvable, e.Ref, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", ErrUnresolvable, e.Ref)
}

func (e *UnresolvableError) Unwrap() error { return ErrUnresolvable }

// Resolve maps a name or id reference onto exactly one descriptor. Pack
// references can match many items and must go through Expand.
func (c *Catalog) Resolve(ref Reference) (Descriptor, error) {
	switch ref.Kind {
	case ByName:
		if d, ok := c.Lookup(ref.Type, ref.Name); ok {
			return d, nil
		}
		return Descriptor{}, &UnresolvableError{Ref: ref, Suggestion: c.suggest(ref.Type, ref.Name)}
	case ByID:
		if d, ok := c.LookupID(ref.Type, ref.ID); ok {
			return d, nil
		}
		return Descriptor{}, &UnresolvableError{Ref: ref}
	case ByPackAndCategory:
		return Descriptor{}, fmt.Errorf("catalog: %s matches many items, use Expand", ref)
	default:
		return Descriptor{}, &UnresolvableError{Ref: ref}
	}
}

// Expand returns every descriptor the reference stands for, minus the names
// in exclude. A pack reference with an empty category selects every item of
// the reference's type. An empty result for a pack reference is not an error.
func (c *Catalog) Expand(ref Reference, exclude []string) ([]Descriptor, error) {
	var found []Descriptor
	if ref.Kind == ByPackAndCategory {
		if c == nil {
			return nil, &UnresolvableError{Ref: ref}
		}
		if _, ok := c.byPack[ref.Pack]; !ok {
			return nil, &UnresolvableError{Ref: ref, Suggestion: c.suggestPack(ref.Pack)}
		}
		for _, d := range c.PackItems(ref.Pack) {
			if packMatch(ref, d) {
				found = append(found, d)
			}
		}
	} else {
		d, err := c.Resolve(ref)
		if err != nil {
			return nil, err
		}
		found = []Descriptor{d}
	}
	if len(exclude) == 0 {
		return found, nil
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, n := range exclude {
		skip[n] = struct{}{}
	}
	out := found[:0]
	for _, d := range found {
		if _, excluded := skip[d.Name]; !excluded {
			out = append(out, d)
		}
	}
	return out, nil
}

func packMatch(ref Reference, d Descriptor) bool {
	typeMatch := d.Type == ref.Type
	if ref.Type == Seed && d.Type == Object && d.Category == SeedCategory {
		typeMatch = true
	}
	if !typeMatch {
		return false
	}
	return ref.Category == "" || d.Category == ref.Category
}

func (c *Catalog) suggest(t ItemType, name string) string {
	if c == nil {
		return ""
	}
	return closest(name, c.names[t.Namespace()])
}

func (c *Catalog) suggestPack(pack string) string {
	return closest(pack, c.Packs())
}

func closest(token string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(token, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
