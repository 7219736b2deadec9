package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForKeyIsReproducible(t *testing.T) {
	a := ForKey(42, 7, "Pierre#0")
	b := ForKey(42, 7, "Pierre#0")
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestForKeyDiffersAcrossDaysAndKeys(t *testing.T) {
	base := Float(42, 7, "k")
	assert.NotEqual(t, base, Float(42, 8, "k"))
	assert.NotEqual(t, base, Float(42, 7, "other"))
	assert.NotEqual(t, base, Float(43, 7, "k"))
}
