package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/radial-layout/internal/config"
	"github.com/iburimskiy/radial-layout/internal/game"
	"github.com/iburimskiy/radial-layout/internal/library"
	"github.com/iburimskiy/radial-layout/internal/radial"
)

const (
	sampleItems  = 5
	watchSettle  = 500 * time.Millisecond
	startTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "radial:", err)
		_ = zenity.Error(err.Error(), zenity.Title("Radial Layout"))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	imagesDir := flag.String("images", "", "folder of pictures to lay out")
	flag.Parse()

	cfg := config.DefaultFile()
	if *configPath != "" {
		f, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = f
	}
	if *imagesDir != "" {
		cfg.Images = *imagesDir
	}

	level := cfg.Level()
	if v := os.Getenv("RADIAL_LOG"); v != "" {
		level = config.File{LogLevel: v}.Level()
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if cfg.Images == "" {
		dir, err := zenity.SelectFile(
			zenity.Title("Choose a folder of pictures"),
			zenity.Directory(),
		)
		switch {
		case errors.Is(err, zenity.ErrCanceled):
			log.Info("no folder chosen, using sample items")
		case err != nil:
			return fmt.Errorf("choose folder: %w", err)
		default:
			log.Info("chose folder", "dir", dir)
			cfg.Images = dir
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var items []radial.Item
	if cfg.Images != "" {
		var err error
		items, err = library.Load(ctx, cfg.Images, log)
		if err != nil {
			return err
		}
	}
	if len(items) == 0 {
		items = samples()
	}

	density := config.DefaultDensity
	if m := ebiten.Monitor(); m != nil && m.DeviceScaleFactor() > 0 {
		density = m.DeviceScaleFactor()
	}

	g, err := game.New(game.Options{Config: cfg, Items: items, Density: density, Log: log})
	if err != nil {
		return err
	}
	defer g.Close()

	flushCtx, cancel := context.WithTimeout(ctx, startTimeout)
	err = g.Flush(flushCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("first layout: %w", err)
	}

	if cfg.Images != "" {
		go func() {
			if err := library.Watch(ctx, cfg.Images, watchSettle, log, g.SetItems); err != nil {
				log.Warn("image folder not watched", "err", err)
			}
		}()
	}
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, log, g.ApplyConfig); err != nil {
				log.Warn("config not watched", "err", err)
			}
		}()
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(title(cfg.Images))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func samples() []radial.Item {
	items := make([]radial.Item, sampleItems)
	for i := range items {
		id := fmt.Sprintf("sample-%d", i)
		items[i] = radial.Item{ID: id, Image: game.Swatch(id, 128), Size: i % 4, Distance: i % 4}
	}
	return items
}

func title(dir string) string {
	if dir == "" {
		return "Radial Layout - samples"
	}
	return "Radial Layout - " + strings.TrimRight(dir, `/\`)
}
