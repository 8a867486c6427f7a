package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"modmatch/internal/logging"
)

// DefaultWatchDebounce coalesces the burst of events editors emit on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads the catalog whenever its file changes and invokes onReload
// with each successfully rebuilt catalog. The parent directory is watched so
// atomic rename-over saves are observed. onReload runs on the watching
// goroutine. Watch blocks until ctx is done.
func (h *Holder) Watch(ctx context.Context, debounce time.Duration, onReload func(*Catalog)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watch: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(h.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("catalog watch %s: %w", filepath.Dir(target), err)
	}
	h.logger.Info("watching catalog", logging.String("path", target))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			pending = nil
			if cat, err := h.Reload(); err == nil && onReload != nil {
				onReload(cat)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(h.logger, "catalog watcher error", "catalog_watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "catalog changes may be missed until restart"),
			)
		}
	}
}
