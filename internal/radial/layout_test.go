package radial

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/radial-layout/internal/config"
)

const frame = time.Second / 60

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	items   []Snapshot
	indices []int
	centers int
}

func (r *recorder) OnItemClick(item Snapshot, index int) {
	r.items = append(r.items, item)
	r.indices = append(r.indices, index)
}

func (r *recorder) OnCenterClick() { r.centers++ }

func newTestLayout(t *testing.T, n int, opts ...Option) (*Layout, *recorder) {
	t.Helper()
	rec := &recorder{}
	l := New(config.Default(), append([]Option{WithLogger(quiet), WithListener(rec)}, opts...)...)
	t.Cleanup(l.Close)
	l.Resize(720, 720)
	require.NoError(t, l.SubmitItems(uniformItems(n), config.Default()))
	require.NoError(t, l.Flush(context.Background()))
	require.True(t, l.Ready())
	return l, rec
}

func settleLayout(t *testing.T, l *Layout) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		if !l.NeedsTick() {
			return
		}
		l.Tick(frame)
	}
	require.FailNow(t, "layout did not settle")
}

func TestLayoutNotReady(t *testing.T) {
	l := New(config.Default(), WithLogger(quiet))

	err := l.UpdateItems(uniformItems(1))
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = l.Touch(Event{Kind: Down})
	assert.ErrorIs(t, err, ErrNotReady)

	assert.ErrorIs(t, l.SubmitItems(nil, config.Default()), ErrEmptyList)
	assert.False(t, l.Ready())
	assert.False(t, l.NeedsTick())
}

func TestLayoutInvalidConfig(t *testing.T) {
	l := New(config.Default(), WithLogger(quiet))
	err := l.SubmitItems(uniformItems(1), config.Default().Apply(config.WithBaseRadius(0)))
	assert.ErrorIs(t, err, config.ErrInvalidLayout)
}

func TestLayoutSubmitGrowsIn(t *testing.T) {
	applied := 0
	l, _ := newTestLayout(t, 5, WithOnApplied(func() { applied++ }))
	assert.Equal(t, 1, applied)

	items := l.Items()
	require.Len(t, items, 5)
	for _, it := range items {
		assert.Equal(t, 0.0, it.Scale)
		assert.Equal(t, 0, it.Row)
	}
	assert.True(t, l.NeedsTick())

	settleLayout(t, l)
	for _, it := range l.Items() {
		assert.InDelta(t, 1, it.Scale, scaleEpsilon)
	}
}

func TestLayoutUpdateIdempotent(t *testing.T) {
	l, _ := newTestLayout(t, 12)
	settleLayout(t, l)
	before := l.Items()

	require.NoError(t, l.UpdateItems(uniformItems(12)))
	require.NoError(t, l.Flush(context.Background()))
	settleLayout(t, l)

	if diff := cmp.Diff(before, l.Items(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("items changed on identical update (-before +after):\n%s", diff)
	}
}

func TestLayoutUpdateRemoves(t *testing.T) {
	l, _ := newTestLayout(t, 5)
	settleLayout(t, l)

	require.NoError(t, l.UpdateItems(uniformItems(4)))
	require.NoError(t, l.Flush(context.Background()))

	items := l.Items()
	require.Len(t, items, 5)
	assert.Equal(t, "item-4", items[4].ID)
	assert.True(t, items[4].Removing)

	settleLayout(t, l)
	items = l.Items()
	require.Len(t, items, 4)
	for _, it := range items {
		assert.False(t, it.Removing)
	}
}

func TestLayoutUpdateAdds(t *testing.T) {
	l, _ := newTestLayout(t, 3)
	settleLayout(t, l)
	radii := make(map[string]float64)
	for _, it := range l.Items() {
		radii[it.ID] = it.Radius
	}

	items := append(uniformItems(3), Item{ID: "new", Size: 9})
	require.NoError(t, l.UpdateItems(items))
	require.NoError(t, l.Flush(context.Background()))

	got := l.Items()
	require.Len(t, got, 4)
	for _, it := range got[:3] {
		assert.InDelta(t, radii[it.ID], it.Radius, 1e-9, "matched items keep their radius")
	}
	assert.Equal(t, "new", got[3].ID)
	assert.Equal(t, 0.0, got[3].Scale)
}

func TestLayoutDuplicateIDs(t *testing.T) {
	items := []Item{{ID: "a"}, {ID: "a"}, {ID: "b"}}
	l := New(config.Default(), WithLogger(quiet))
	t.Cleanup(l.Close)
	require.NoError(t, l.SubmitItems(items, config.Default()))
	require.NoError(t, l.Flush(context.Background()))

	m := l.match([]Item{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "a"}})
	assert.Same(t, l.nodes[0], m[0])
	assert.Same(t, l.nodes[2], m[1])
	assert.Same(t, l.nodes[1], m[2])
	assert.Nil(t, m[3])
}

func TestLayoutStaleResultDropped(t *testing.T) {
	l, _ := newTestLayout(t, 5)

	stale := result{gen: l.gen - 1, items: uniformItems(1), packing: &Packing{}}
	assert.False(t, l.apply(stale))
	assert.Len(t, l.Items(), 5)

	require.NoError(t, l.UpdateItems(uniformItems(2)))
	require.NoError(t, l.UpdateItems(uniformItems(7)))
	require.NoError(t, l.Flush(context.Background()))
	assert.Len(t, l.Items(), 7)
}

func TestLayoutCloseDiscardsFinishedPacking(t *testing.T) {
	l := New(config.Default(), WithLogger(quiet))
	require.NoError(t, l.SubmitItems(uniformItems(3), config.Default()))

	// Give the packing time to land in the result channel.
	time.Sleep(20 * time.Millisecond)
	l.Close()
	l.Tick(frame)

	assert.False(t, l.Ready())
	assert.Empty(t, l.Items())
	assert.False(t, l.NeedsTick())
}

func TestLayoutFlushCanceled(t *testing.T) {
	l := New(config.Default(), WithLogger(quiet))
	l.inflight = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Flush(ctx), context.Canceled)
}

func TestLayoutShadowInsetResetsDrawables(t *testing.T) {
	svc := &fakeImages{}
	l, _ := newTestLayout(t, 2, WithImageService(svc))
	settleLayout(t, l)

	var s fakeSurface
	l.Draw(&s)
	l.Draw(&s)
	assert.Equal(t, 2, svc.renders, "drawables are cached")

	require.NoError(t, l.UpdateItems(uniformItems(2), config.WithShadowInset(4)))
	require.NoError(t, l.Flush(context.Background()))
	l.Draw(&s)
	assert.Equal(t, 4, svc.renders)
	assert.Equal(t, 4.0, svc.lastInset)
}

func TestLayoutDrawPlaceholders(t *testing.T) {
	svc := &fakeImages{err: errors.New("broken")}
	l, _ := newTestLayout(t, 3, WithImageService(svc))
	l.SetCenterItem(NewCenter(nil, 64))
	settleLayout(t, l)

	var s fakeSurface
	l.Draw(&s)
	l.Draw(&s)
	assert.Equal(t, 8, s.placeholders)
	assert.Equal(t, 2, s.strokes)
	assert.Zero(t, s.images)
	assert.Equal(t, 4, svc.renders, "failures are not retried every frame")
}

func TestLayoutDrawCulls(t *testing.T) {
	l, _ := newTestLayout(t, 20, WithImageService(&fakeImages{}))
	settleLayout(t, l)

	var s fakeSurface
	l.Resize(200, 200)
	l.Draw(&s)

	// Only ring 0 lies inside the falloff threshold of a 200x200 view.
	assert.Equal(t, 7, s.images)

	s = fakeSurface{}
	l.Resize(720, 720)
	l.Draw(&s)
	assert.Equal(t, 20, s.images)
	for _, tr := range s.transforms {
		assert.LessOrEqual(t, tr.Scale, 1.0+1e-9)
		assert.False(t, math.IsNaN(tr.Scale))
	}
}

type fakeImages struct {
	err       error
	renders   int
	lastInset float64
}

func (f *fakeImages) DecodeAndCrop(img image.Image, diameter int) (image.Image, error) {
	if f.err != nil {
		f.renders++
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, diameter, diameter)), nil
}

func (f *fakeImages) RenderCircular(cropped image.Image, radius, shadowInset float64) (Drawable, error) {
	f.renders++
	f.lastInset = shadowInset
	return cropped, nil
}

type fakeSurface struct {
	images, strokes, placeholders int
	transforms                    []Transform
}

func (s *fakeSurface) DrawImage(d Drawable, t Transform) {
	s.images++
	s.transforms = append(s.transforms, t)
}

func (s *fakeSurface) DrawStrokedCircle(cx, cy, radius float64, st Stroke) { s.strokes++ }

func (s *fakeSurface) DrawPlaceholder(t Transform) { s.placeholders++ }
