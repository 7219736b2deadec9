// Package pricing computes unit prices, stock quantities and conditional
// price multipliers for shop entries.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Unlimited is the quantity of an entry that never sells out.
const Unlimited = math.MaxInt32

// Price returns override when it is set, otherwise base × multiplier rounded
// half away from zero. The result is never negative.
func Price(base int, multiplier float64, override *int) int {
	if override != nil {
		return clamp(int64(*override))
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = 1
	}
	p := decimal.NewFromInt(int64(base)).Mul(decimal.NewFromFloat(multiplier)).Round(0)
	return clamp(p.IntPart())
}

func clamp(v int64) int {
	switch {
	case v < 0:
		return 0
	case v > Unlimited:
		return Unlimited
	default:
		return int(v)
	}
}

// IntSource is the subset of *rand.Rand used for quantity draws.
type IntSource interface {
	IntN(n int) int
}

// Quantity draws a stock size in [min, max + trunc(levelBonus × level)],
// floored at zero. A range that collapses below min yields exactly min.
func Quantity(min, max int, levelBonus float64, level int, rng IntSource) int {
	bonus := int(levelBonus * float64(level))
	span := max - min + bonus
	if span < 0 {
		span = 0
	}
	q := int64(min)
	if span > 0 {
		q += int64(rng.IntN(span + 1))
	}
	return clamp(q)
}

// Multiplier is a price factor that applies while all of When hold.
type Multiplier struct {
	Value float64  `json:"Multiplier" yaml:"multiplier"`
	When  []string `json:"When,omitempty" yaml:"when,omitempty"`
}

// ResolveMultiplier returns the value of the first pair whose conditions
// hold, in declared order, or 1 when none do.
func ResolveMultiplier(pairs []Multiplier, holds func(when []string) bool) float64 {
	for _, p := range pairs {
		if holds(p.When) {
			return p.Value
		}
	}
	return 1
}
