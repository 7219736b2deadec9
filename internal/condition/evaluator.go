// Package condition parses and evaluates the small boolean language shops,
// stocks and rules use to decide when they apply.
package condition

import (
	"errors"
	"sync"

	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Evaluator compiles condition strings on first use and keeps the result.
// Malformed strings and unknown predicates are reported once each and
// evaluate to false.
type Evaluator struct {
	monitor *logging.Monitor

	mu    sync.RWMutex
	cache map[string]Node
}

// NewEvaluator constructs an evaluator that reports problems to m.
func NewEvaluator(m *logging.Monitor) *Evaluator {
	return &Evaluator{monitor: m, cache: make(map[string]Node)}
}

// Compile returns the cached tree for expr. It never returns nil; a string
// that fails to parse yields a false constant.
func (e *Evaluator) Compile(expr string) Node {
	e.mu.RLock()
	n, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return n
	}

	n, err := Parse(expr)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			e.monitor.LogOnce(logging.Warn, "invalid condition %q: %s", expr, se.Msg)
		} else {
			e.monitor.LogOnce(logging.Warn, "invalid condition %q: %v", expr, err)
		}
		n = Constant(false)
	} else {
		Walk(n, func(c Node) {
			if u, ok := c.(Unknown); ok {
				e.monitor.LogOnce(logging.Warn, "unknown condition predicate %q in %q", u.Name, expr)
			}
		})
	}

	e.mu.Lock()
	if cached, ok := e.cache[expr]; ok {
		n = cached
	} else {
		e.cache[expr] = n
	}
	e.mu.Unlock()
	return n
}

// Evaluate reports whether expr holds for w.
func (e *Evaluator) Evaluate(expr string, w *world.Snapshot) bool {
	return Eval(e.Compile(expr), w)
}

// Check reports whether every expression holds. An empty list holds.
func (e *Evaluator) Check(exprs []string, w *world.Snapshot) bool {
	for _, expr := range exprs {
		if !e.Evaluate(expr, w) {
			return false
		}
	}
	return true
}

var emptySnapshot world.Snapshot

// Eval evaluates a compiled tree. A nil snapshot behaves like a zero one.
func Eval(n Node, w *world.Snapshot) bool {
	if n == nil {
		return true
	}
	if w == nil {
		w = &emptySnapshot
	}
	return n.Eval(w)
}
