package config

import (
	"errors"
	"fmt"
)

const (
	WindowWidth  = 720
	WindowHeight = 720

	// Item geometry, device-independent units.
	BaseRadius      = 36
	RadiusVariation = 6
	ItemSeparation  = 8
	ShadowInset     = 0

	// Center item
	CenterSize     = 64
	OutlineWeight  = 2
	OutlineInset   = 4
	ShadowedInset  = 6 // inset used when shadows are toggled on
	DefaultDensity = 1.0
)

// Layout holds the ring geometry parameters in device-independent units.
type Layout struct {
	BaseRadius      float64 `yaml:"base_radius"`
	RadiusVariation float64 `yaml:"radius_variation"`
	ItemSeparation  float64 `yaml:"item_separation"`
	ShadowInset     float64 `yaml:"shadow_inset"`
}

// Default returns the stock layout.
func Default() Layout {
	return Layout{
		BaseRadius:      BaseRadius,
		RadiusVariation: RadiusVariation,
		ItemSeparation:  ItemSeparation,
		ShadowInset:     ShadowInset,
	}
}

// Pixels converts every field from dp to pixels.
func (l Layout) Pixels(density float64) Layout {
	if density <= 0 {
		density = DefaultDensity
	}
	return Layout{
		BaseRadius:      l.BaseRadius * density,
		RadiusVariation: l.RadiusVariation * density,
		ItemSeparation:  l.ItemSeparation * density,
		ShadowInset:     l.ShadowInset * density,
	}
}

var ErrInvalidLayout = errors.New("invalid layout")

// Validate reports the first field that cannot produce a usable ring.
func (l Layout) Validate() error {
	switch {
	case l.BaseRadius <= 0:
		return fmt.Errorf("%w: base radius %v must be positive", ErrInvalidLayout, l.BaseRadius)
	case l.RadiusVariation < 0 || l.RadiusVariation >= l.BaseRadius:
		return fmt.Errorf("%w: radius variation %v must be in [0, %v)", ErrInvalidLayout, l.RadiusVariation, l.BaseRadius)
	case l.ItemSeparation < 0:
		return fmt.Errorf("%w: item separation %v must not be negative", ErrInvalidLayout, l.ItemSeparation)
	case l.ShadowInset < 0:
		return fmt.Errorf("%w: shadow inset %v must not be negative", ErrInvalidLayout, l.ShadowInset)
	}
	return nil
}

// Override adjusts a Layout for a single update.
type Override func(*Layout)

func WithBaseRadius(r float64) Override      { return func(l *Layout) { l.BaseRadius = r } }
func WithRadiusVariation(v float64) Override { return func(l *Layout) { l.RadiusVariation = v } }
func WithItemSeparation(s float64) Override  { return func(l *Layout) { l.ItemSeparation = s } }
func WithShadowInset(s float64) Override     { return func(l *Layout) { l.ShadowInset = s } }

// Apply returns a copy of l with the overrides applied in order.
func (l Layout) Apply(overrides ...Override) Layout {
	for _, o := range overrides {
		o(&l)
	}
	return l
}
