package radial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settle(t *testing.T, a *anim) int {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if !a.needsFrame() {
			return i
		}
		a.step()
	}
	require.FailNow(t, "animation did not settle")
	return 0
}

func TestStepConvergesMonotonically(t *testing.T) {
	a := newAnim()
	a.scale = 0
	a.targetRadius = 30
	a.targetAngle = 1.5

	prevR, prevA, prevS := math.Inf(1), math.Inf(1), math.Inf(1)
	for a.needsFrame() {
		a.step()
		dr := math.Abs(a.targetRadius - a.radius)
		da := math.Abs(a.targetAngle - a.angle)
		ds := math.Abs(1 - a.scale)
		require.LessOrEqual(t, dr, prevR)
		require.LessOrEqual(t, da, prevA)
		require.LessOrEqual(t, ds, prevS)
		prevR, prevA, prevS = dr, da, ds
	}
	assert.InDelta(t, 30, a.radius, radiusEpsilon)
	assert.InDelta(t, 1.5, a.angle, angleEpsilon)
	assert.InDelta(t, 1, a.scale, scaleEpsilon)
}

func TestClickBackOvershoots(t *testing.T) {
	a := newAnim()
	a.clickBack()

	peak := 0.0
	for i := 0; i < 1000 && a.needsFrame(); i++ {
		a.step()
		peak = max(peak, a.scale)
	}
	assert.False(t, a.needsFrame())
	assert.Greater(t, peak, UpScale-scaleEpsilon)
	assert.InDelta(t, 1, a.scale, scaleEpsilon)
}

func TestClickDown(t *testing.T) {
	a := newAnim()
	a.clickDown()
	settle(t, &a)
	assert.InDelta(t, DownScale, a.scale, scaleEpsilon)

	a.clickUp()
	settle(t, &a)
	assert.InDelta(t, 1, a.scale, scaleEpsilon)
}

func TestRemovePurgesBelowThreshold(t *testing.T) {
	a := newAnim()
	a.removeFrom()

	// Feedback must not revive an item on its way out.
	a.clickUp()
	a.clickBack()
	assert.Equal(t, []float64{0}, a.targets)

	for i := 0; i < 1000; i++ {
		require.True(t, a.needsFrame())
		before := a.scale
		a.step()
		if a.purgeable() {
			assert.GreaterOrEqual(t, before, purgeScale)
			assert.Less(t, a.scale, purgeScale)
			return
		}
	}
	t.Fatal("removed item never became purgeable")
}
