package condition

import (
	"strings"

	"github.com/gravitas-games/shoptiles/internal/world"
)

// Node is a compiled condition. Nodes are immutable and safe to share
// between goroutines.
type Node interface {
	Eval(w *world.Snapshot) bool
	String() string
}

// All holds when every child holds. It stops at the first false child.
type All struct{ Children []Node }

func (n All) Eval(w *world.Snapshot) bool {
	v, _ := eval3(n, w)
	return v
}

func (n All) String() string { return compound("ALL", n.Children) }

// Any holds when at least one child holds. It stops at the first true child.
type Any struct{ Children []Node }

func (n Any) Eval(w *world.Snapshot) bool {
	v, _ := eval3(n, w)
	return v
}

func (n Any) String() string { return compound("ANY", n.Children) }

// Not inverts its child. A result that depends on an unknown predicate
// stays false under negation, however deeply the predicate is nested.
type Not struct{ Child Node }

func (n Not) Eval(w *world.Snapshot) bool {
	v, _ := eval3(n, w)
	return v
}

func (n Not) String() string { return "! " + Quote(n.Child.String()) }

// Constant is a literal result.
type Constant bool

func (n Constant) Eval(*world.Snapshot) bool { return bool(n) }

func (n Constant) String() string {
	if n {
		return "true"
	}
	return "false"
}

// Unknown is a predicate with no registered keyword. It never holds.
type Unknown struct {
	Name string
	Args []string
}

func (n Unknown) Eval(*world.Snapshot) bool { return false }

func (n Unknown) String() string { return strings.Join(append([]string{n.Name}, n.Args...), " ") }

// Predicate is an atomic test with its arguments already parsed.
type Predicate struct {
	Kind Kind
	Args []string
	test func(*world.Snapshot) bool
}

func (n Predicate) Eval(w *world.Snapshot) bool { return n.test(w) }

func (n Predicate) String() string {
	parts := []string{n.Kind.String()}
	for _, a := range n.Args {
		if strings.ContainsAny(a, " \"") || a == "" {
			a = Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// eval3 evaluates n and reports whether the result is known. An unknown
// predicate is neither true nor false until a sibling decides the outcome:
// false in ALL, true in ANY. Unknown results evaluate as false.
func eval3(n Node, w *world.Snapshot) (value, known bool) {
	switch v := n.(type) {
	case Unknown:
		return false, false
	case All:
		known = true
		for _, c := range v.Children {
			cv, ck := eval3(c, w)
			if !ck {
				known = false
				continue
			}
			if !cv {
				return false, true
			}
		}
		return known, known
	case Any:
		known = true
		for _, c := range v.Children {
			cv, ck := eval3(c, w)
			if !ck {
				known = false
				continue
			}
			if cv {
				return true, true
			}
		}
		return false, known
	case Not:
		cv, ck := eval3(v.Child, w)
		if !ck {
			return false, false
		}
		return !cv, true
	default:
		return n.Eval(w), true
	}
}

func compound(op string, children []Node) string {
	parts := []string{op}
	for _, c := range children {
		parts = append(parts, Quote(c.String()))
	}
	return strings.Join(parts, " ")
}

// Walk calls fn for n and every node below it.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch v := n.(type) {
	case All:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case Any:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case Not:
		Walk(v.Child, fn)
	}
}
