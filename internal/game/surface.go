package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/radial-layout/internal/imaging"
	"github.com/iburimskiy/radial-layout/internal/radial"
)

// images renders item drawables as ebiten images.
type images struct {
	imaging.Service
}

func (s images) RenderCircular(cropped image.Image, radius, shadowInset float64) (radial.Drawable, error) {
	if cropped == nil {
		return nil, imaging.ErrNoImage
	}
	return ebiten.NewImageFromImage(s.Circle(cropped, radius, shadowInset)), nil
}

// surface draws composited items onto an ebiten image.
type surface struct {
	dst         *ebiten.Image
	placeholder color.Color
}

func (s surface) DrawImage(d radial.Drawable, t radial.Transform) {
	img, ok := d.(*ebiten.Image)
	if !ok {
		s.DrawPlaceholder(t)
		return
	}
	x, y, side := t.Bounds()
	w := img.Bounds().Dx()
	if w == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(side/float64(w), side/float64(w))
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	s.dst.DrawImage(img, op)
}

func (s surface) DrawStrokedCircle(cx, cy, radius float64, st radial.Stroke) {
	vector.StrokeCircle(s.dst, float32(cx), float32(cy), float32(radius), float32(st.Width), st.Color, true)
}

func (s surface) DrawPlaceholder(t radial.Transform) {
	x, y, side := t.Bounds()
	vector.DrawFilledCircle(s.dst, float32(x+side/2), float32(y+side/2), float32(side/2), s.placeholder, true)
}
