// Package game hosts a radial layout in an ebiten window.
package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/iburimskiy/radial-layout/internal/config"
	"github.com/iburimskiy/radial-layout/internal/imaging"
	"github.com/iburimskiy/radial-layout/internal/radial"
)

var background = color.RGBA{R: 18, G: 20, B: 28, A: 255}

// Options configures a Game.
type Options struct {
	Config  config.File
	Items   []radial.Item
	Density float64
	Log     *slog.Logger
}

// Game implements ebiten.Game around a radial.Layout.
type Game struct {
	log     *slog.Logger
	layout  *radial.Layout
	items   []radial.Item
	cfg     config.Layout
	density float64
	sound   *clickSound
	input   pointer
	posted  chan func()

	// input edge detection
	prevKey map[ebiten.Key]bool

	shadows bool
	lastErr error
}

// New builds the game and submits the initial items.
func New(opts Options) (*Game, error) {
	if len(opts.Items) == 0 {
		return nil, radial.ErrEmptyList
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Density <= 0 {
		opts.Density = config.DefaultDensity
	}

	g := &Game{
		log:     log.With("component", "game"),
		items:   opts.Items,
		cfg:     opts.Config.Layout,
		density: opts.Density,
		posted:  make(chan func(), 16),
		prevKey: map[ebiten.Key]bool{},
	}

	sound, err := newClickSound(opts.Config.ClickSound)
	if err != nil {
		// The layout works without audio.
		g.log.Warn("click sound disabled", "err", err)
	}
	g.sound = sound

	g.layout = radial.New(g.cfg,
		radial.WithDensity(opts.Density),
		radial.WithLogger(log),
		radial.WithImageService(images{imaging.Service{}}),
		radial.WithListener(radial.Listeners{Item: g.onItemClick, Center: g.onCenterClick}),
		radial.WithOnApplied(func() { g.lastErr = nil }),
	)
	if err := g.layout.SubmitItems(g.items, g.cfg); err != nil {
		return nil, fmt.Errorf("submit items: %w", err)
	}

	center := radial.NewCenter(g.items[0].Image, config.CenterSize)
	center.Outline = radial.Outline{
		Weight: config.OutlineWeight,
		Inset:  config.OutlineInset,
		Color:  hueFor(g.items[0].ID, 0.6, 0.9),
	}
	g.layout.SetCenterItem(center)
	return g, nil
}

// Post queues fn to run on the update goroutine. It is safe to call from
// any goroutine and drops fn if the queue is full.
func (g *Game) Post(fn func()) {
	select {
	case g.posted <- fn:
	default:
		g.log.Warn("update queue full, dropping message")
	}
}

// SetItems replaces the items, keeping those whose ids are still present.
func (g *Game) SetItems(items []radial.Item) {
	g.Post(func() { g.update(items) })
}

// ApplyConfig switches to the layout of f.
func (g *Game) ApplyConfig(f config.File) {
	g.Post(func() {
		l := f.Layout
		if g.shadows {
			l.ShadowInset = config.ShadowedInset
		}
		g.cfg = f.Layout
		g.update(g.items,
			config.WithBaseRadius(l.BaseRadius),
			config.WithRadiusVariation(l.RadiusVariation),
			config.WithItemSeparation(l.ItemSeparation),
			config.WithShadowInset(l.ShadowInset),
		)
	})
}

// Flush waits for a pending layout to be applied. Intended for startup,
// before the window is shown.
func (g *Game) Flush(ctx context.Context) error {
	return g.layout.Flush(ctx)
}

// Close abandons background work.
func (g *Game) Close() {
	g.layout.Close()
}

func (g *Game) update(items []radial.Item, overrides ...config.Override) {
	if len(items) == 0 {
		return
	}
	err := g.layout.UpdateItems(items, overrides...)
	if errors.Is(err, radial.ErrNotReady) {
		cfg := g.layout.Config().Apply(overrides...)
		err = g.layout.SubmitItems(items, cfg)
	}
	if err != nil {
		g.fail("update items", err)
		return
	}
	g.items = items
}

func (g *Game) fail(msg string, err error) {
	g.log.Warn(msg, "err", err)
	g.lastErr = err
}

func (g *Game) onItemClick(it radial.Snapshot, index int) {
	g.sound.play()
	g.log.Debug("item clicked", "index", index, "id", it.ID)

	items := append(g.items[:len(g.items):len(g.items)], radial.Item{
		ID:       uuid.NewString(),
		Image:    it.Image,
		Size:     rand.Intn(5) + 1,
		Distance: len(g.items) + 8,
	})
	g.update(items)
}

func (g *Game) onCenterClick() {
	g.sound.play()
	g.log.Debug("center clicked", "items", len(g.items))

	if len(g.items) > 1 {
		g.update(g.items[:len(g.items)-1:len(g.items)-1])
		return
	}
	last := g.items[0]
	g.update(append(g.items[:1:1], radial.Item{
		ID:       uuid.NewString(),
		Image:    last.Image,
		Size:     rand.Intn(5) + 1,
		Distance: len(g.items) + 8,
	}))
}

// toggleShadows lays the items out again with or without a shadow margin.
func (g *Game) toggleShadows() {
	g.shadows = !g.shadows
	inset := g.cfg.ShadowInset
	if g.shadows {
		inset = config.ShadowedInset
	}
	cfg := g.layout.Config().Apply(config.WithShadowInset(inset))
	if err := g.layout.SubmitItems(g.items, cfg); err != nil {
		g.fail("toggle shadows", err)
	}
}

func (g *Game) Update() error {
	for len(g.posted) > 0 {
		(<-g.posted)()
	}

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if justPressed(ebiten.KeyS) {
		g.toggleShadows()
	}

	events := g.input.events()
	if g.layout.Ready() {
		for _, e := range events {
			if _, err := g.layout.Touch(e); err != nil {
				g.fail("touch", err)
			}
		}
	}

	g.layout.Tick(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.layout.Draw(surface{dst: screen, placeholder: color.RGBA{R: 70, G: 76, B: 92, A: 255}})

	status := fmt.Sprintf("%d items, %d rings | S: shadows | Esc/Q: quit", len(g.items), g.layout.MaxRow()+1)
	if !g.layout.Ready() {
		status = "Laying out..."
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := int(float64(outsideWidth) * g.density)
	h := int(float64(outsideHeight) * g.density)
	g.layout.Resize(float64(w), float64(h))
	return w, h
}

// Swatch returns a solid square image in the color of id, for items that
// have no picture of their own.
func Swatch(id string, side int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	c := hueFor(id, 0.5, 0.85)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
