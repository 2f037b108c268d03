// Package imaging prepares item images for the radial layout: decoding,
// square cropping, scaling and circular clipping with a soft shadow.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/iburimskiy/radial-layout/internal/radial"
)

var ErrNoImage = errors.New("imaging: no image")

// Open decodes the image file at path.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Service implements radial.ImageService on in-memory images.
type Service struct {
	// Shadow is the color of the drop shadow drawn in the inset margin.
	Shadow color.Color
}

var _ radial.ImageService = Service{}

// CropSquare returns the largest centered square of img.
func CropSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	r := image.Rect(x0, y0, x0+side, y0+side)

	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

func (Service) DecodeAndCrop(img image.Image, diameter int) (image.Image, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if diameter <= 0 {
		return nil, fmt.Errorf("imaging: diameter %d must be positive", diameter)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("imaging: empty image")
	}
	return resize.Resize(uint(diameter), uint(diameter), CropSquare(img), resize.Lanczos3), nil
}

func (s Service) RenderCircular(cropped image.Image, radius, shadowInset float64) (radial.Drawable, error) {
	if cropped == nil {
		return nil, ErrNoImage
	}
	if radius <= 0 {
		return nil, fmt.Errorf("imaging: radius %v must be positive", radius)
	}
	return s.Circle(cropped, radius, shadowInset), nil
}

// Circle draws cropped clipped to a circle of radius-shadowInset, centered
// in a square of side 2*radius, with a shadow fading out across the inset.
func (s Service) Circle(cropped image.Image, radius, shadowInset float64) *image.RGBA {
	side := int(math.Ceil(2 * radius))
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	c := float64(side) / 2
	inner := max(radius-shadowInset, 0)

	if shadowInset > 0 {
		shadow := s.Shadow
		if shadow == nil {
			shadow = color.NRGBA{A: 100}
		}
		draw.DrawMask(dst, dst.Bounds(), image.NewUniform(shadow), image.Point{},
			ring{cx: c, cy: c, inner: inner, outer: radius}, image.Point{}, draw.Over)
	}

	off := int(math.Round(c - inner))
	b := cropped.Bounds()
	r := image.Rect(off, off, off+b.Dx(), off+b.Dy())
	draw.DrawMask(dst, r, cropped, b.Min,
		disc{cx: c, cy: c, r: inner}, image.Point{X: off, Y: off}, draw.Over)
	return dst
}

// disc is an anti-aliased circular alpha mask.
type disc struct{ cx, cy, r float64 }

func (d disc) ColorModel() color.Model { return color.AlphaModel }

func (d disc) Bounds() image.Rectangle {
	return image.Rect(int(d.cx-d.r)-1, int(d.cy-d.r)-1, int(d.cx+d.r)+2, int(d.cy+d.r)+2)
}

func (d disc) At(x, y int) color.Color {
	dist := math.Hypot(float64(x)+0.5-d.cx, float64(y)+0.5-d.cy)
	return color.Alpha{A: uint8(255 * clamp01(d.r-dist+0.5))}
}

// ring is an alpha mask fading from opaque at inner to clear at outer.
type ring struct{ cx, cy, inner, outer float64 }

func (r ring) ColorModel() color.Model { return color.AlphaModel }

func (r ring) Bounds() image.Rectangle {
	return image.Rect(int(r.cx-r.outer)-1, int(r.cy-r.outer)-1, int(r.cx+r.outer)+2, int(r.cy+r.outer)+2)
}

func (r ring) At(x, y int) color.Color {
	dist := math.Hypot(float64(x)+0.5-r.cx, float64(y)+0.5-r.cy)
	if dist <= r.inner {
		return color.Alpha{A: 255}
	}
	return color.Alpha{A: uint8(255 * clamp01((r.outer-dist)/(r.outer-r.inner)))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
