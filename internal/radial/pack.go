package radial

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/iburimskiy/radial-layout/internal/config"
)

// Placement is the computed geometry of one submitted item.
type Placement struct {
	Index  int // position in the submitted list
	ID     string
	Row    int
	Radius float64
	Angle  float64
}

// Packing is the immutable result of Pack.
type Packing struct {
	// Items are ordered the way they were packed: by distance class, then
	// by size class.
	Items  []Placement
	MaxRow int
	Rings  Rings

	// Padding is the extra angle inserted between neighbours on each ring.
	Padding []float64
	// Counts is the number of items admitted to each ring.
	Counts []int
}

// PackOptions configures Pack.
type PackOptions struct {
	Layout  config.Layout // pixels
	Density float64

	// Prior holds, per submitted item, the radius it already has on screen.
	// Items with a positive prior radius keep it so their drawables do not
	// need to be rebuilt. A nil Prior assigns every radius afresh.
	Prior []float64
}

// Pack assigns a ring, radius and angle to every item.
func Pack(ctx context.Context, items []Item, opts PackOptions) (*Packing, error) {
	n := len(items)
	if n == 0 {
		return nil, ErrEmptyList
	}
	density := opts.Density
	if density <= 0 {
		density = config.DefaultDensity
	}
	l := opts.Layout
	rings := Rings{ItemRadius: l.BaseRadius, Separation: l.ItemSeparation, Padding: RingPadding * density}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	// small -> big
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(items[a].Size, items[b].Size) })
	radii := make([]float64, n)
	for rank, idx := range order {
		r := l.BaseRadius - l.RadiusVariation + 2*l.RadiusVariation*float64(rank)/float64(n)
		if opts.Prior != nil && idx < len(opts.Prior) && opts.Prior[idx] > 0 {
			r = opts.Prior[idx]
		}
		radii[idx] = r
	}

	// near -> far
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(items[a].Distance, items[b].Distance) })
	placed := make([]Placement, n)
	for k, idx := range order {
		placed[k] = Placement{Index: idx, ID: items[idx].ID, Radius: radii[idx]}
	}

	p := &Packing{Items: placed, Rings: rings}
	sep := l.ItemSeparation
	for start, ring := 0, 0; start < n; ring++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		circ := rings.Circumference(ring)
		used, count := 0.0, 0
		for k := start; k < n; k++ {
			r := placed[k].Radius
			if used+2*r+sep*float64(count) >= circ {
				break
			}
			used += 2*r + sep
			placed[k].Row = ring
			count++
		}
		p.MaxRow = ring

		if count == 0 {
			// nothing fits; park the rest on this ring
			for k := start; k < n; k++ {
				placed[k].Row = ring
				placed[k].Angle = -math.Pi / 2
			}
			p.Padding = append(p.Padding, 0)
			p.Counts = append(p.Counts, n-start)
			break
		}

		padding := ((circ-used)/float64(count+1) + sep) / circ * 2 * math.Pi
		radius := rings.Radius(ring)
		for k := start; k < start+count; k++ {
			switch {
			case k == 0:
				placed[k].Angle = -math.Pi / 2
			case k == start && k >= 2:
				placed[k].Angle = (placed[k-1].Angle + placed[k-2].Angle) / 2
			case k == start:
				placed[k].Angle = placed[k-1].Angle
			default:
				prev := placed[k-1]
				placed[k].Angle = prev.Angle + chordAngle(radius, prev.Radius+placed[k].Radius) + padding
			}
		}
		p.Padding = append(p.Padding, padding)
		p.Counts = append(p.Counts, count)
		start += count
	}
	return p, nil
}

// chordAngle returns the angle subtended on a circle of radius r by a chord
// of length d, from the law of cosines.
func chordAngle(r, d float64) float64 {
	c := (2*r*r - d*d) / (2 * r * r)
	return math.Acos(max(-1, min(1, c)))
}
