package radial

import (
	"image"
	"image/color"
	"math"
)

// Drawable is an opaque, renderable token produced by an ImageService.
type Drawable any

// ImageService turns caller images into drawables.
type ImageService interface {
	// DecodeAndCrop returns img cropped to a square and scaled to diameter.
	DecodeAndCrop(img image.Image, diameter int) (image.Image, error)
	// RenderCircular clips cropped to a circle of the given radius, leaving
	// shadowInset pixels of margin for a drop shadow.
	RenderCircular(cropped image.Image, radius, shadowInset float64) (Drawable, error)
}

// Surface is the host drawing target.
type Surface interface {
	DrawImage(d Drawable, t Transform)
	DrawStrokedCircle(cx, cy, radius float64, s Stroke)
	// DrawPlaceholder draws a filled circle for an item whose drawable
	// could not be produced.
	DrawPlaceholder(t Transform)
}

// Stroke describes an outline.
type Stroke struct {
	Width float64
	Color color.Color
}

// View is the viewport an arrangement is composited into.
type View struct {
	Width, Height float64
	PanX, PanY    float64
}

// Transform places an item on screen. X and Y are the top-left corner of
// the item's unscaled box of side 2*Radius; Scale applies about its center.
type Transform struct {
	X, Y   float64
	Radius float64
	Scale  float64
}

// Bounds returns the top-left corner and side of the scaled box.
func (t Transform) Bounds() (x, y, side float64) {
	side = 2 * t.Radius * t.Scale
	return t.X + t.Radius - side/2, t.Y + t.Radius - side/2, side
}

// falloffThreshold is the panned distance at which items vanish.
func (v View) falloffThreshold() float64 {
	return (v.Width + v.Height) / 4
}

func (n *node) transform(v View) (Transform, bool) {
	r := n.radius
	if r <= 0 {
		return Transform{}, false
	}
	ox, oy := n.offset()
	dist := math.Hypot(v.PanX+ox+r, v.PanY+oy+r)
	threshold := v.falloffThreshold()
	if dist >= threshold {
		return Transform{}, false
	}
	m := min(math.Sqrt(threshold-dist)/math.Sqrt(2*r)*n.scale, n.scale)
	if m <= 0 {
		return Transform{}, false
	}
	return Transform{
		X:      v.Width/2 + v.PanX + ox,
		Y:      v.Height/2 + v.PanY + oy,
		Radius: r,
		Scale:  m,
	}, true
}

func (c *centerNode) transform(v View) (Transform, bool) {
	if c.radius <= 0 || c.scale <= 0 {
		return Transform{}, false
	}
	return Transform{
		X:      v.Width/2 - c.radius,
		Y:      v.Height/2 - c.radius,
		Radius: c.radius,
		Scale:  c.scale,
	}, true
}

// stroke returns the outline circle of the center item for t.
func (c *centerNode) stroke(t Transform) (cx, cy, radius float64, s Stroke, ok bool) {
	if c.outline.Weight <= 0 {
		return 0, 0, 0, Stroke{}, false
	}
	w := c.outline.Weight * t.Scale
	return t.X + t.Radius, t.Y + t.Radius, (c.radius - c.outline.Weight/2) * t.Scale, Stroke{Width: w, Color: c.outline.Color}, true
}
