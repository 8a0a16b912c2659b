package headset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"vr-vddc-renderer/internal/log"
)

// Update is one re-read of a watched profile. Err is set when the new
// contents could not be loaded; the previous params stay in effect.
type Update struct {
	Params Params
	Err    error
}

// Watch re-loads the profile at path whenever it is written or replaced and
// sends the result on the returned channel. The channel is closed when ctx
// is done. Updates are meant to be applied between frames.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan Update, error) {
	logger = log.Or(logger)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("headset: watch %s: %w", path, err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("headset: watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	out := make(chan Update, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				p, err := Load(path)
				if err != nil {
					logger.Warn("headset profile reload failed", "path", path, "err", err)
				} else {
					logger.Info("headset profile reloaded", "path", path)
				}
				select {
				case out <- Update{Params: p, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("headset watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
