package radial

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// Item is a caller-supplied entry of the layout. Size and Distance are
// relative classes: smaller sizes get smaller radii, smaller distances are
// placed on inner rings.
type Item struct {
	ID       string
	Image    image.Image
	Size     int
	Distance int
}

// Outline is the stroked ring drawn around the center item, in dp.
type Outline struct {
	Weight float64
	Inset  float64
	Color  color.Color
}

// DefaultOutline is the outline of a center item created with NewCenter.
var DefaultOutline = Outline{Weight: 2, Inset: 4, Color: color.Black}

// Center is the item pinned at the middle of the layout.
type Center struct {
	Image   image.Image
	Size    float64 // diameter in dp
	Outline Outline
}

// NewCenter returns a center item of the given diameter with the default
// outline.
func NewCenter(img image.Image, size float64) *Center {
	return &Center{Image: img, Size: size, Outline: DefaultOutline}
}

// Snapshot is a read-only copy of a live item.
type Snapshot struct {
	Item
	Row      int
	Radius   float64
	Angle    float64
	Scale    float64
	Removing bool
}

// compositable is implemented by every live variant the compositor draws.
type compositable interface {
	transform(v View) (Transform, bool)
	drawable(svc ImageService, inset float64) (Drawable, error)
}

// errRenderFailed is returned for an item whose last render attempt at the
// same size failed, so that the failure is reported once.
var errRenderFailed = errors.New("radial: render failed")

// drawCache holds the last drawable produced for an item and the radius it
// was rendered at.
type drawCache struct {
	d      Drawable
	failed bool
	radius float64
	inset  float64
}

// stale reports whether a drawable rendered at the cached radius no longer
// fits radius.
func (c *drawCache) stale(radius, inset float64) bool {
	return (c.d == nil && !c.failed) || math.Abs(c.radius-radius) >= 0.5 || c.inset != inset
}

func (c *drawCache) reset() { *c = drawCache{} }

// get returns the cached drawable, rendering a new one with fn when stale.
func (c *drawCache) get(radius, inset float64, fn func() (Drawable, error)) (Drawable, error) {
	if !c.stale(radius, inset) {
		if c.failed {
			return nil, errRenderFailed
		}
		return c.d, nil
	}
	d, err := fn()
	*c = drawCache{d: d, failed: err != nil, radius: radius, inset: inset}
	return d, err
}

// node is a live ring item.
type node struct {
	Item
	anim
	rings Rings
	cache drawCache
}

var _ compositable = (*node)(nil)

func newNode(it Item) *node {
	return &node{Item: it, anim: newAnim()}
}

// offset returns the top-left corner of the item relative to the view
// center, before panning.
func (n *node) offset() (x, y float64) {
	x, y = polar(n.angle, n.rings.Radius(n.row))
	return x - n.radius, y - n.radius
}

func (n *node) snapshot() Snapshot {
	return Snapshot{
		Item:     n.Item,
		Row:      n.row,
		Radius:   n.radius,
		Angle:    n.angle,
		Scale:    n.scale,
		Removing: n.removing,
	}
}

func (n *node) drawable(svc ImageService, inset float64) (Drawable, error) {
	return n.cache.get(n.targetRadius, inset, func() (Drawable, error) {
		return render(svc, n.Image, n.targetRadius, inset)
	})
}

// centerNode is the live center item.
type centerNode struct {
	Center
	anim
	outline Outline // in pixels
	cache   drawCache
}

var _ compositable = (*centerNode)(nil)

func newCenterNode(c *Center, density float64) *centerNode {
	cn := &centerNode{Center: *c, anim: newAnim()}
	cn.radius = c.Size * density / 2
	cn.targetRadius = cn.radius
	cn.outline = Outline{
		Weight: c.Outline.Weight * density,
		Inset:  c.Outline.Inset * density,
		Color:  c.Outline.Color,
	}
	if cn.outline.Color == nil {
		cn.outline.Color = color.Black
	}
	cn.scale = 0
	cn.clickUp()
	return cn
}

// imageInset is the margin between the drawable edge and the image, which
// must make room for both the outline and the shadow.
func (c *centerNode) imageInset(shadow float64) float64 {
	return math.Max(shadow, c.outline.Inset+c.outline.Weight)
}

func (c *centerNode) drawable(svc ImageService, inset float64) (Drawable, error) {
	inset = c.imageInset(inset)
	return c.cache.get(c.radius, inset, func() (Drawable, error) {
		return render(svc, c.Image, c.radius, inset)
	})
}

func render(svc ImageService, img image.Image, radius, inset float64) (Drawable, error) {
	diameter := int(math.Round(2 * (radius - inset)))
	if diameter < 1 {
		diameter = 1
	}
	cropped, err := svc.DecodeAndCrop(img, diameter)
	if err != nil {
		return nil, err
	}
	return svc.RenderCircular(cropped, radius, inset)
}
