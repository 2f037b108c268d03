package radial

import (
	"math"
	"time"
)

const (
	// DragArea is the displacement area, in dp², a pointer must sweep
	// before a press turns into a drag.
	DragArea = 64

	// SettleDelay is how long a pan rests after a drag release before it
	// starts decaying back to the center.
	SettleDelay = 2 * time.Second

	// DecayInterval is the period of one geometric decay step.
	DecayInterval = 10 * time.Millisecond

	decayFactor  = 1.1
	decayEpsilon = 0.01
)

// EventKind is the kind of a pointer event.
type EventKind uint8

const (
	Down EventKind = iota + 1
	Move
	Up
	Cancel
)

func (k EventKind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	}
	return "invalid"
}

// Event is a single-pointer event in view pixels.
type Event struct {
	Kind EventKind
	X, Y float64
}

// scene is what the gesture controller hit-tests against.
type scene struct {
	width, height float64
	center        *centerNode
	nodes         []*node
	rings         Rings
	maxRow        int
}

// bound is half the distance the arrangement may be panned on each axis.
func (s scene) bound() float64 {
	d := 2*s.rings.Radius(s.maxRow+1) - min(s.width, s.height)
	return max(d/2, 0)
}

// tap is a confirmed click, reported back to the Layout for dispatch.
type tap struct {
	center bool
	index  int // -1 when nothing was hit
}

// Gesture is the single-pointer state machine driving panning and
// press feedback.
type Gesture struct {
	density float64

	offsetX, offsetY     float64
	velocityX, velocityY float64
	fingerX, fingerY     float64 // pan target
	lastX, lastY         float64 // rest offset
	downX, downY         float64

	down       bool // a gesture is in progress, cleared by the settle
	fingerDown bool
	ignorant   bool // a second down arrived before the settle
	dragged    bool
	scrolling  bool

	pending  bool // settle scheduled
	wait     time.Duration
	decaying bool
	decayAcc time.Duration
}

func newGesture(density float64) *Gesture {
	return &Gesture{density: density}
}

// Pan returns the current pan offset.
func (g *Gesture) Pan() (x, y float64) { return g.offsetX, g.offsetY }

// area returns the displacement area from the press point in dp².
func (g *Gesture) area(x, y float64) float64 {
	return math.Abs(x-g.downX) / g.density * math.Abs(y-g.downY) / g.density
}

// handle applies e and reports whether it was consumed and which tap, if
// any, it confirmed.
func (g *Gesture) handle(e Event, s scene) (bool, tap) {
	none := tap{index: -1}
	switch e.Kind {
	case Down:
		g.fingerDown = true
		g.downX, g.downY = e.X, e.Y
		if !g.down {
			g.down = true
			g.pending = false
		} else {
			g.ignorant = true
		}
		g.dragged = false
		g.press(e.X, e.Y, s)
		return true, none

	case Move:
		g.fingerDown = true
		g.pending = false
		b := s.bound()
		if b <= 0 || (g.area(e.X, e.Y) < DragArea && !g.dragged) {
			return false, none
		}
		g.dragged = true
		g.scrolling = true
		g.fingerX = clamp(e.X-g.downX+g.lastX, b)
		g.fingerY = clamp(e.Y-g.downY+g.lastY, b)
		resetAll(s)
		return true, none

	case Cancel:
		g.fingerDown = false
		g.dragged = false
		g.schedule(0)
		resetAll(s)
		return true, none

	case Up:
		g.fingerDown = false
		for _, n := range s.nodes {
			n.clickUp()
		}
		if g.area(e.X, e.Y) < DragArea && !g.dragged {
			if !g.ignorant {
				g.down = false
			}
			t := g.release(e.X, e.Y, s)
			if g.offsetX != 0 || g.offsetY != 0 {
				g.lastX, g.lastY = g.offsetX, g.offsetY
				g.schedule(SettleDelay)
			}
			return true, t
		}
		if s.center != nil {
			s.center.clickUp()
		}
		g.lastX, g.lastY = g.offsetX, g.offsetY
		g.schedule(SettleDelay)
		return true, none
	}
	return false, none
}

// press highlights whatever lies under (x, y).
func (g *Gesture) press(x, y float64, s scene) {
	if g.hitCenter(x, y, s) {
		s.center.clickDown()
		for _, n := range s.nodes {
			n.clickUp()
		}
		return
	}
	if s.center != nil {
		s.center.clickUp()
	}
	hit := g.hitItem(x, y, s)
	for i, n := range s.nodes {
		if i == hit {
			n.clickDown()
		} else {
			n.clickUp()
		}
	}
}

// release resolves a tap at (x, y) and plays the confirmation bounce.
func (g *Gesture) release(x, y float64, s scene) tap {
	if g.hitCenter(x, y, s) {
		s.center.clickBack()
		return tap{center: true, index: -1}
	}
	if s.center != nil {
		s.center.clickUp()
	}
	if i := g.hitItem(x, y, s); i >= 0 {
		s.nodes[i].clickBack()
		return tap{index: i}
	}
	return tap{index: -1}
}

func (g *Gesture) hitCenter(x, y float64, s scene) bool {
	if s.center == nil {
		return false
	}
	return math.Hypot(s.width/2-x, s.height/2-y) < s.center.radius
}

// hitItem returns the index of the first live item whose bounding box
// contains (x, y), or -1.
func (g *Gesture) hitItem(x, y float64, s scene) int {
	for i, n := range s.nodes {
		if n.removing {
			continue
		}
		ox, oy := n.offset()
		ix := s.width/2 + ox + g.offsetX
		iy := s.height/2 + oy + g.offsetY
		if x > ix && x-ix < 2*n.radius && y > iy && y-iy < 2*n.radius {
			return i
		}
	}
	return -1
}

func resetAll(s scene) {
	if s.center != nil {
		s.center.clickUp()
	}
	for _, n := range s.nodes {
		n.clickUp()
	}
}

func (g *Gesture) schedule(d time.Duration) {
	g.pending = true
	g.wait = d
}

// tick advances pan physics by one frame and the settle timers by dt.
func (g *Gesture) tick(dt time.Duration, s scene) {
	if g.scrolling {
		g.integrate(s.bound())
	}

	if g.pending {
		g.wait -= dt
		if g.wait <= 0 {
			g.pending = false
			g.down = false
			g.ignorant = false
			g.velocityX, g.velocityY = 0, 0
			g.decaying = true
			g.decayAcc = DecayInterval - dt // first step runs right away
		}
	}

	if g.decaying {
		g.decayAcc += dt
		for g.decaying && g.decayAcc >= DecayInterval {
			g.decayAcc -= DecayInterval
			g.decay()
		}
	}
}

// integrate blends the pan offset toward the finger, easing into the
// scroll bound. The offset never leaves [-bound, bound].
func (g *Gesture) integrate(bound float64) {
	nvx := ((g.fingerX - g.offsetX) + g.velocityX*18) / 21
	nvy := ((g.fingerY - g.offsetY) + g.velocityY*18) / 21
	if math.Trunc(nvx) == math.Trunc(g.velocityX) && math.Trunc(nvy) == math.Trunc(g.velocityY) {
		g.scrolling = false
		g.offsetX, g.offsetY = clamp(g.offsetX, bound), clamp(g.offsetY, bound)
		g.fingerX, g.fingerY = g.offsetX, g.offsetY
		g.velocityX, g.velocityY = 0, 0
		return
	}

	if g.fingerDown {
		g.velocityX = g.fingerX - g.offsetX
		g.velocityY = g.fingerY - g.offsetY
	} else {
		g.velocityX, g.velocityY = nvx, nvy
	}

	bx, by := clamp(g.offsetX, bound), clamp(g.offsetY, bound)
	g.offsetX = clamp(((g.offsetX+g.velocityX)*3+bx)/4, bound)
	g.offsetY = clamp(((g.offsetY+g.velocityY)*3+by)/4, bound)
	g.fingerX = g.offsetX + g.velocityX/2
	g.fingerY = g.offsetY + g.velocityY/2

	if !g.fingerDown {
		g.lastX, g.lastY = g.offsetX, g.offsetY
	}
}

// decay performs one geometric step of the return to center.
func (g *Gesture) decay() {
	if g.down {
		g.decaying = false
		return
	}
	if math.Abs(g.offsetX) > decayEpsilon || math.Abs(g.offsetY) > decayEpsilon {
		g.offsetX /= decayFactor
		g.offsetY /= decayFactor
		g.lastX /= decayFactor
		g.lastY /= decayFactor
		return
	}
	g.offsetX, g.offsetY = 0, 0
	g.lastX, g.lastY = 0, 0
	g.fingerX, g.fingerY = 0, 0
	g.decaying = false
}

// needsTick reports whether panning still moves on its own.
func (g *Gesture) needsTick() bool {
	return g.scrolling || g.pending || g.decaying || g.offsetX != 0 || g.offsetY != 0
}

func clamp(v, bound float64) float64 {
	return max(-bound, min(bound, v))
}
