// Package random derives reproducible random sources from stable keys so that
// every draw made for a given game day can be repeated exactly.
package random

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// ForKey returns a generator seeded from the game id, the day number and a
// stable key. Equal inputs always yield the same sequence.
func ForKey(gameID uint64, day int, key string) *rand.Rand {
	// Non-cryptographic PRNG is intentional: results must be reproducible.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(gameID, day, key, "a"), seedWord(gameID, day, key, "b")))
}

// Float returns a single draw in [0, 1) for the given inputs.
func Float(gameID uint64, day int, key string) float64 {
	return ForKey(gameID, day, key).Float64()
}

func seedWord(gameID uint64, day int, key, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%d:%s:%s", gameID, day, key, salt)))
	return h.Sum64()
}
