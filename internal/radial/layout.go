package radial

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/iburimskiy/radial-layout/internal/config"
)

// Listener receives confirmed taps.
type Listener interface {
	OnItemClick(item Snapshot, index int)
	OnCenterClick()
}

// Listeners adapts plain functions to Listener. Nil fields are skipped.
type Listeners struct {
	Item   func(item Snapshot, index int)
	Center func()
}

func (l Listeners) OnItemClick(item Snapshot, index int) {
	if l.Item != nil {
		l.Item(item, index)
	}
}

func (l Listeners) OnCenterClick() {
	if l.Center != nil {
		l.Center()
	}
}

// Option configures a Layout.
type Option func(*Layout)

// WithDensity sets the number of pixels per dp.
func WithDensity(d float64) Option {
	return func(l *Layout) {
		if d > 0 {
			l.density = d
		}
	}
}

func WithLogger(log *slog.Logger) Option { return func(l *Layout) { l.log = log } }
func WithListener(ls Listener) Option    { return func(l *Layout) { l.listener = ls } }
func WithImageService(s ImageService) Option {
	return func(l *Layout) { l.svc = s }
}

// WithOnApplied registers fn to run each time a packing has been merged
// into the live items.
func WithOnApplied(fn func()) Option { return func(l *Layout) { l.onApplied = fn } }

// result is a finished packing on its way back to the owning goroutine.
type result struct {
	gen     uint64
	first   bool
	cfg     config.Layout
	items   []Item
	packing *Packing
	err     error
}

// Layout owns the live items of a radial arrangement.
//
// A Layout is not safe for concurrent use: every method must be called from
// the goroutine that drives Tick and Draw. Packing runs in the background
// and is merged during Tick or Flush.
type Layout struct {
	log       *slog.Logger
	density   float64
	cfg       config.Layout // dp
	svc       ImageService
	listener  Listener
	onApplied func()

	nodes   []*node
	center  *centerNode
	gesture *Gesture
	packing *Packing
	ready   bool

	width, height float64

	gen      uint64
	inflight bool
	cancel   context.CancelFunc
	results  chan result
}

// New returns an empty Layout using cfg until items are submitted.
func New(cfg config.Layout, opts ...Option) *Layout {
	l := &Layout{
		density: config.DefaultDensity,
		cfg:     cfg,
		results: make(chan result, 1),
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	l.log = l.log.With("component", "radial")
	l.gesture = newGesture(l.density)
	return l
}

// Ready reports whether the first packing has been applied.
func (l *Layout) Ready() bool { return l.ready }

// Config returns the layout parameters of the last applied packing.
func (l *Layout) Config() config.Layout { return l.cfg }

// MaxRow returns the outermost ring index in use.
func (l *Layout) MaxRow() int {
	if l.packing == nil {
		return 0
	}
	return l.packing.MaxRow
}

// Pan returns the current pan offset in pixels.
func (l *Layout) Pan() (x, y float64) { return l.gesture.Pan() }

// Resize sets the viewport size in pixels.
func (l *Layout) Resize(width, height float64) {
	l.width, l.height = width, height
}

// SubmitItems lays items out from scratch. The live items are replaced once
// the packing completes; until then Ready reports false.
func (l *Layout) SubmitItems(items []Item, cfg config.Layout) error {
	if len(items) == 0 {
		return ErrEmptyList
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	l.ready = false
	l.dispatch(items, cfg, nil, true)
	return nil
}

// UpdateItems morphs the live items into a new list. Items are matched to
// live ones by ID, the k-th occurrence of an ID taking the k-th live item
// with that ID; matched items keep their radius and animate to their new
// place, unmatched new items grow in and unmatched live items shrink out.
func (l *Layout) UpdateItems(items []Item, overrides ...config.Override) error {
	if !l.ready {
		return fmt.Errorf("update items: %w", ErrNotReady)
	}
	if len(items) == 0 {
		return ErrEmptyList
	}
	cfg := l.cfg.Apply(overrides...)
	if err := cfg.Validate(); err != nil {
		return err
	}

	prior := make([]float64, len(items))
	if cfg.BaseRadius == l.cfg.BaseRadius && cfg.RadiusVariation == l.cfg.RadiusVariation {
		for i, n := range l.match(items) {
			if n != nil {
				prior[i] = n.targetRadius
			}
		}
	}
	l.dispatch(items, cfg, prior, false)
	return nil
}

// dispatch starts packing in the background, superseding any request still
// in flight.
func (l *Layout) dispatch(items []Item, cfg config.Layout, prior []float64, first bool) {
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.gen++
	l.inflight = true

	gen, density := l.gen, l.density
	items = slices.Clone(items)
	opts := PackOptions{Layout: cfg.Pixels(density), Density: density, Prior: prior}
	l.log.Debug("packing", "gen", gen, "items", len(items), "first", first)

	go func() {
		p, err := Pack(ctx, items, opts)
		r := result{gen: gen, first: first, cfg: cfg, items: items, packing: p, err: err}
		select {
		case l.results <- r:
		case <-ctx.Done():
		}
	}()
}

// Flush blocks until the packing in flight, if any, has been applied.
func (l *Layout) Flush(ctx context.Context) error {
	for l.inflight {
		select {
		case r := <-l.results:
			if l.apply(r) && r.err != nil {
				return r.err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close abandons any packing in flight. A result that already finished is
// discarded as well.
func (l *Layout) Close() {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.inflight = false
}

func (l *Layout) drain() {
	for {
		select {
		case r := <-l.results:
			l.apply(r)
		default:
			return
		}
	}
}

// apply merges r into the live items and reports whether r was current.
func (l *Layout) apply(r result) bool {
	if r.gen != l.gen {
		l.log.Debug("discarding stale packing", "gen", r.gen, "current", l.gen)
		return false
	}
	l.inflight = false
	if r.err != nil {
		l.log.Warn("packing failed", "gen", r.gen, "err", r.err)
		return true
	}

	insetChanged := r.cfg.ShadowInset != l.cfg.ShadowInset
	l.cfg = r.cfg
	l.packing = r.packing

	if r.first {
		nodes := make([]*node, len(r.items))
		for _, p := range r.packing.Items {
			n := newNode(r.items[p.Index])
			n.place(p, r.packing.Rings)
			n.radius, n.angle = p.Radius, p.Angle
			n.scale = 0
			n.clickUp()
			nodes[p.Index] = n
		}
		l.nodes = nodes
		l.ready = true
	} else {
		l.merge(r.items, r.packing)
	}

	if insetChanged {
		for _, n := range l.nodes {
			n.cache.reset()
		}
		if l.center != nil {
			l.center.cache.reset()
		}
	}

	l.log.Debug("applied packing", "gen", r.gen, "items", len(l.nodes), "rings", r.packing.MaxRow+1)
	if l.onApplied != nil {
		l.onApplied()
	}
	return true
}

// match pairs each of items with the live item it updates, or nil.
func (l *Layout) match(items []Item) []*node {
	live := make(map[string][]*node, len(l.nodes))
	for _, n := range l.nodes {
		if !n.removing {
			live[n.ID] = append(live[n.ID], n)
		}
	}
	out := make([]*node, len(items))
	for i, it := range items {
		if q := live[it.ID]; len(q) > 0 {
			out[i] = q[0]
			live[it.ID] = q[1:]
		}
	}
	return out
}

func (l *Layout) merge(items []Item, p *Packing) {
	byIndex := make([]Placement, len(items))
	for _, pl := range p.Items {
		byIndex[pl.Index] = pl
	}

	matched := l.match(items)
	kept := make(map[*node]bool, len(matched))
	next := make([]*node, 0, len(items)+len(l.nodes))
	for i, n := range matched {
		if n == nil {
			n = newNode(items[i])
			n.place(byIndex[i], p.Rings)
			n.radius, n.angle = n.targetRadius, n.targetAngle
			n.scale = 0
			n.clickUp()
		} else {
			n.animateTo(items[i], byIndex[i], p.Rings)
			kept[n] = true
		}
		next = append(next, n)
	}
	for _, n := range l.nodes {
		if kept[n] {
			continue
		}
		if !n.removing {
			n.removeFrom()
		}
		next = append(next, n)
	}
	l.nodes = next
}

// place sets the targets of n from p.
func (n *node) place(p Placement, rings Rings) {
	n.row = p.Row
	n.rings = rings
	n.targetRadius = p.Radius
	n.targetAngle = p.Angle
}

// animateTo retargets a live item at a new placement.
func (n *node) animateTo(it Item, p Placement, rings Rings) {
	if !sameImage(n.Image, it.Image) {
		n.cache.reset()
	}
	n.Item = it
	n.place(p, rings)
}

func sameImage(a, b image.Image) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	return ta.Comparable() && a == b
}

// SetCenterItem replaces the center item; nil removes it.
func (l *Layout) SetCenterItem(c *Center) {
	if c == nil {
		l.center = nil
		return
	}
	l.center = newCenterNode(c, l.density)
}

// Items returns a snapshot of the live items, including those still
// shrinking out.
func (l *Layout) Items() []Snapshot {
	out := make([]Snapshot, 0, len(l.nodes))
	for _, n := range l.nodes {
		out = append(out, n.snapshot())
	}
	return out
}

func (l *Layout) scene() scene {
	s := scene{width: l.width, height: l.height, center: l.center, nodes: l.nodes}
	if l.packing != nil {
		s.rings, s.maxRow = l.packing.Rings, l.packing.MaxRow
	}
	return s
}

// Tick merges finished packings and advances every animation by one frame;
// dt is the time since the previous tick.
func (l *Layout) Tick(dt time.Duration) {
	l.drain()

	if l.center != nil {
		l.center.step()
	}
	if l.ready {
		kept := l.nodes[:0]
		for _, n := range l.nodes {
			n.step()
			if n.purgeable() {
				continue
			}
			kept = append(kept, n)
		}
		clear(l.nodes[len(kept):])
		l.nodes = kept
	}
	l.gesture.tick(dt, l.scene())
}

// NeedsTick reports whether anything is still moving. A host may stop
// scheduling frames once it returns false.
func (l *Layout) NeedsTick() bool {
	if l.inflight || l.gesture.needsTick() {
		return true
	}
	if l.center != nil && l.center.needsFrame() {
		return true
	}
	for _, n := range l.nodes {
		if n.needsFrame() {
			return true
		}
	}
	return false
}

// Touch feeds a pointer event to the gesture controller and reports
// whether it was consumed.
func (l *Layout) Touch(e Event) (bool, error) {
	if !l.ready {
		return false, fmt.Errorf("touch %s: %w", e.Kind, ErrNotReady)
	}
	consumed, t := l.gesture.handle(e, l.scene())
	switch {
	case l.listener == nil:
	case t.center:
		l.listener.OnCenterClick()
	case t.index >= 0:
		l.listener.OnItemClick(l.nodes[t.index].snapshot(), t.index)
	}
	return consumed, nil
}

// Draw composites the center item and every visible live item onto dst.
func (l *Layout) Draw(dst Surface) {
	px, py := l.gesture.Pan()
	v := View{Width: l.width, Height: l.height, PanX: px, PanY: py}
	inset := l.cfg.ShadowInset * l.density

	if c := l.center; c != nil {
		if t, ok := l.draw(dst, c, v, inset); ok {
			if cx, cy, r, s, ok := c.stroke(t); ok {
				dst.DrawStrokedCircle(cx, cy, r, s)
			}
		}
	}
	if !l.ready {
		return
	}
	for _, n := range l.nodes {
		l.draw(dst, n, v, inset)
	}
}

func (l *Layout) draw(dst Surface, c compositable, v View, inset float64) (Transform, bool) {
	t, ok := c.transform(v)
	if !ok {
		return t, false
	}
	if l.svc == nil {
		dst.DrawPlaceholder(t)
		return t, true
	}
	d, err := c.drawable(l.svc, inset)
	if err != nil {
		if !errors.Is(err, errRenderFailed) {
			l.log.Warn("rendering item failed", "err", err)
		}
		dst.DrawPlaceholder(t)
		return t, true
	}
	dst.DrawImage(d, t)
	return t, true
}
