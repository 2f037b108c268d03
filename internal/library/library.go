// Package library turns a folder of pictures into radial items.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/radial-layout/internal/imaging"
	"github.com/iburimskiy/radial-layout/internal/radial"
)

// PerRing is how many pictures share a distance class, newest first.
const PerRing = 6

var extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ID returns a stable item id for the file at path.
func ID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String()
}

// IsImage reports whether path has a supported picture extension.
func IsImage(path string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

type file struct {
	path string
	size int64
	mod  time.Time
}

// SizeClass grows with the logarithm of a file's size in KiB.
func SizeClass(bytes int64) int {
	return int(math.Log2(float64(bytes)/1024 + 1))
}

// Load decodes every picture in dir. Newer pictures get smaller distance
// classes and larger files larger size classes. Files that fail to decode
// are logged and skipped.
func Load(ctx context.Context, dir string, log *slog.Logger) ([]radial.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read images: %w", err)
	}

	var files []file
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between listing and stat
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("stat image", "name", e.Name(), "err", err)
			}
			continue
		}
		files = append(files, file{path: filepath.Join(dir, e.Name()), size: info.Size(), mod: info.ModTime()})
	}
	slices.SortStableFunc(files, func(a, b file) int { return b.mod.Compare(a.mod) })

	items := make([]radial.Item, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(f.path)
			if err != nil {
				log.Warn("skipping image", "path", f.path, "err", err)
				return nil
			}
			items[i] = radial.Item{
				ID:       ID(f.path),
				Image:    img,
				Size:     SizeClass(f.size),
				Distance: i / PerRing,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items = slices.DeleteFunc(items, func(it radial.Item) bool { return it.Image == nil })
	log.Info("loaded images", "dir", dir, "count", len(items))
	return items, nil
}

// Watch reloads dir after pictures are added, changed or removed and hands
// the new list to fn. Bursts of events are coalesced over settle. fn runs on
// the watcher goroutine. Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, settle time.Duration, log *slog.Logger, fn func([]radial.Item)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("image watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsImage(ev.Name) || (ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write)) {
				continue
			}
			log.Debug("image changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("image watcher", "err", err)
		case <-timer.C:
			items, err := Load(ctx, dir, log)
			if err != nil {
				log.Warn("reload images", "err", err)
				continue
			}
			if len(items) > 0 {
				fn(items)
			}
		}
	}
}
