package radial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingsIncreasing(t *testing.T) {
	r := Rings{ItemRadius: 36, Separation: 8, Padding: RingPadding}
	prev := 0.0
	for row := 0; row < 32; row++ {
		got := r.Radius(row)
		assert.Greater(t, got, prev, "row %d", row)
		assert.InDelta(t, 2*math.Pi*got, r.Circumference(row), 1e-9)
		prev = got
	}
}

func TestRingRadius(t *testing.T) {
	assert.InDelta(t, 92, RingRadius(0, 36, 8), 1e-9)
	assert.InDelta(t, 172, RingRadius(1, 36, 8), 1e-9)
	assert.InDelta(t, 2*math.Pi*92, RingCircumference(0, 36, 8), 1e-9)
}

func TestPolar(t *testing.T) {
	x, y := polar(-math.Pi/2, 10)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, -10, y, 1e-9)
}
