package radial

import "math"

// Scale targets used for touch feedback.
const (
	DownScale = 0.8
	UpScale   = 1.07
)

const (
	smoothing = 5 // weight of the current value in each tick's blend

	scaleEpsilon  = 0.01
	radiusEpsilon = 0.01
	angleEpsilon  = 0.001
	purgeScale    = 0.02
)

// anim is the animation state shared by ring and center items.
type anim struct {
	row int

	radius, targetRadius float64
	angle, targetAngle   float64

	scale   float64
	targets []float64 // head is the scale currently animated toward

	removing bool
}

func newAnim() anim {
	return anim{scale: 1, targets: []float64{1}}
}

func blend(target, current float64) float64 {
	return (target + current*smoothing) / (smoothing + 1)
}

// step advances the state by one tick.
func (a *anim) step() {
	a.radius = blend(a.targetRadius, a.radius)
	a.angle = blend(a.targetAngle, a.angle)

	if len(a.targets) == 0 {
		a.targets = []float64{1}
	}
	if len(a.targets) > 1 && math.Abs(a.scale-a.targets[0]) < scaleEpsilon {
		a.targets = a.targets[1:]
	}
	a.scale = blend(a.targets[0], a.scale)
}

// needsFrame reports whether another tick would still change the state.
func (a *anim) needsFrame() bool {
	return math.Abs(a.targetRadius-a.radius) > radiusEpsilon ||
		math.Abs(a.targetAngle-a.angle) > angleEpsilon ||
		len(a.targets) > 1 ||
		(len(a.targets) == 1 && math.Abs(a.targets[0]-a.scale) > scaleEpsilon) ||
		a.removing
}

// purgeable reports whether a removing item has faded out.
func (a *anim) purgeable() bool {
	return a.removing && a.scale < purgeScale
}

// queue replaces the scale targets. Items on their way out ignore touch
// feedback.
func (a *anim) queue(scales ...float64) {
	if a.removing {
		return
	}
	a.targets = append(a.targets[:0], scales...)
}

func (a *anim) clickDown() { a.queue(DownScale) }
func (a *anim) clickUp()   { a.queue(1) }

// clickBack bounces past full size and settles back, confirming a tap.
func (a *anim) clickBack() { a.queue(UpScale, 1) }

func (a *anim) removeFrom() {
	a.queue(0)
	a.removing = true
}
