package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/radial-layout/internal/radial"
)

// pointer folds mouse and touch input into the single pointer the layout
// understands. The first touch to go down owns the gesture until it is
// released; other touches are ignored.
type pointer struct {
	active  bool
	isTouch bool
	touchID ebiten.TouchID
	x, y    int

	justPressed []ebiten.TouchID
}

// events returns the pointer events of the current tick.
func (p *pointer) events() []radial.Event {
	if p.active && !ebiten.IsFocused() {
		p.active = false
		return []radial.Event{{Kind: radial.Cancel, X: float64(p.x), Y: float64(p.y)}}
	}

	if p.active {
		return p.track()
	}

	p.justPressed = inpututil.AppendJustPressedTouchIDs(p.justPressed[:0])
	if len(p.justPressed) > 0 {
		p.active, p.isTouch, p.touchID = true, true, p.justPressed[0]
		p.x, p.y = ebiten.TouchPosition(p.touchID)
		return []radial.Event{p.event(radial.Down)}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		p.active, p.isTouch = true, false
		p.x, p.y = ebiten.CursorPosition()
		return []radial.Event{p.event(radial.Down)}
	}
	return nil
}

func (p *pointer) track() []radial.Event {
	var released bool
	var x, y int
	if p.isTouch {
		released = inpututil.IsTouchJustReleased(p.touchID)
		if released {
			x, y = inpututil.TouchPositionInPreviousTick(p.touchID)
		} else {
			x, y = ebiten.TouchPosition(p.touchID)
		}
	} else {
		released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
		x, y = ebiten.CursorPosition()
	}

	var out []radial.Event
	if x != p.x || y != p.y {
		p.x, p.y = x, y
		out = append(out, p.event(radial.Move))
	}
	if released {
		p.active = false
		out = append(out, p.event(radial.Up))
	}
	return out
}

func (p *pointer) event(k radial.EventKind) radial.Event {
	return radial.Event{Kind: k, X: float64(p.x), Y: float64(p.y)}
}
