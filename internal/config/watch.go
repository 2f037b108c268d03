package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever it is written and passes the
// result to fn. Invalid files are logged and skipped. Watch blocks until ctx
// is done.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save keep triggering reloads.
func Watch(ctx context.Context, path string, log *slog.Logger, fn func(File)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer w.Close()

	clean := filepath.Clean(path)
	if err := w.Add(filepath.Dir(clean)); err != nil {
		return fmt.Errorf("watch %s: %w", clean, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != clean || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			f, err := Load(clean)
			if err != nil {
				log.Warn("config reload failed", "path", clean, "err", err)
				continue
			}
			log.Info("config reloaded", "path", clean)
			fn(f)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher", "err", err)
		}
	}
}
