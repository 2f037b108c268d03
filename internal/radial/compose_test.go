package radial

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topNode() *node {
	n := newNode(Item{ID: "top"})
	n.rings = Rings{ItemRadius: 36, Separation: 8, Padding: RingPadding}
	n.radius, n.targetRadius = 30, 30
	n.angle, n.targetAngle = -math.Pi/2, -math.Pi/2
	return n
}

func TestNodeTransform(t *testing.T) {
	n := topNode()

	tr, ok := n.transform(View{Width: 720, Height: 720})
	require.True(t, ok)
	assert.InDelta(t, 330, tr.X, 1e-9)
	assert.InDelta(t, 238, tr.Y, 1e-9)
	assert.Equal(t, 30.0, tr.Radius)
	assert.Equal(t, 1.0, tr.Scale)
}

func TestNodeTransformFalloff(t *testing.T) {
	n := topNode()

	// 355px from the center of a 720x720 view, 5px short of the threshold.
	tr, ok := n.transform(View{Width: 720, Height: 720, PanY: -263})
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(5)/math.Sqrt(60), tr.Scale, 1e-9)

	_, ok = n.transform(View{Width: 720, Height: 720, PanX: 400})
	assert.False(t, ok, "beyond the falloff threshold")

	n.scale = 0
	_, ok = n.transform(View{Width: 720, Height: 720})
	assert.False(t, ok, "zero scale")

	n.scale, n.radius = 1, 0
	_, ok = n.transform(View{Width: 720, Height: 720})
	assert.False(t, ok, "zero radius")
}

func TestCenterTransformIgnoresPan(t *testing.T) {
	c := newCenterNode(&Center{Size: 64, Outline: DefaultOutline}, 1)
	c.scale = 1

	tr, ok := c.transform(View{Width: 720, Height: 720, PanX: 100, PanY: -50})
	require.True(t, ok)
	assert.Equal(t, Transform{X: 328, Y: 328, Radius: 32, Scale: 1}, tr)

	cx, cy, r, s, ok := c.stroke(tr)
	require.True(t, ok)
	assert.Equal(t, 360.0, cx)
	assert.Equal(t, 360.0, cy)
	assert.Equal(t, 31.0, r)
	assert.Equal(t, 2.0, s.Width)
	assert.Equal(t, color.Black, s.Color)
}

func TestCenterWithoutOutline(t *testing.T) {
	c := newCenterNode(&Center{Size: 64}, 2)
	c.scale = 1
	assert.Equal(t, 64.0, c.radius)

	tr, ok := c.transform(View{Width: 200, Height: 200})
	require.True(t, ok)
	_, _, _, _, ok = c.stroke(tr)
	assert.False(t, ok)
}

func TestTransformBounds(t *testing.T) {
	x, y, side := Transform{X: 0, Y: 0, Radius: 10, Scale: 0.5}.Bounds()
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 5.0, y)
	assert.Equal(t, 10.0, side)
}
