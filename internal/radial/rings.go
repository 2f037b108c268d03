// Package radial arranges circular items on concentric rings around a
// center point, animates them toward their targets and handles panning and
// tap gestures over the arrangement.
//
// A Layout is owned by a single goroutine (the host's update loop). Ring
// packing runs on a separate goroutine and hands immutable results back to
// the owner, which performs every mutation of the live item set.
package radial

import "math"

// RingPadding is the constant padding, in dp, added to every ring radius.
const RingPadding = 12

// Rings describes the concentric rings in pixels.
type Rings struct {
	ItemRadius float64
	Separation float64
	Padding    float64
}

// Radius returns the radius of ring row.
func (r Rings) Radius(row int) float64 {
	return float64(row+1)*(2*r.ItemRadius+r.Separation) + r.Padding
}

// Circumference returns the circumference of ring row.
func (r Rings) Circumference(row int) float64 {
	return 2 * math.Pi * r.Radius(row)
}

// RingRadius is Rings.Radius at density 1.
func RingRadius(row int, itemRadius, itemSeparation float64) float64 {
	return Rings{ItemRadius: itemRadius, Separation: itemSeparation, Padding: RingPadding}.Radius(row)
}

// RingCircumference is Rings.Circumference at density 1.
func RingCircumference(row int, itemRadius, itemSeparation float64) float64 {
	return 2 * math.Pi * RingRadius(row, itemRadius, itemSeparation)
}

// polar returns the offset of angle a on a circle of radius r, with a = 0
// pointing right and -π/2 pointing up.
func polar(a, r float64) (x, y float64) {
	return r * math.Cos(a), r * math.Sin(a)
}
