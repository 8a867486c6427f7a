package catalog

import (
	"log/slog"
	"sync/atomic"

	"modmatch/internal/logging"
)

// Holder publishes the current catalog to concurrent readers. Readers take a
// snapshot with Current and keep using it for the whole match run, so a
// reload never changes a catalog mid-run.
type Holder struct {
	current atomic.Pointer[Catalog]
	path    string
	logger  *slog.Logger
}

// NewHolder wraps an already built catalog loaded from path.
func NewHolder(cat *Catalog, path string, logger *slog.Logger) *Holder {
	h := &Holder{path: path, logger: logging.NewComponentLogger(logger, "catalog")}
	h.current.Store(cat)
	return h
}

// Current returns the catalog in effect.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Path returns the file the holder reloads from.
func (h *Holder) Path() string {
	return h.path
}

// Reload rebuilds the catalog from disk and swaps it in. On failure the
// previous catalog stays in effect and the error is returned.
func (h *Holder) Reload() (*Catalog, error) {
	cat, err := Load(h.path)
	if err != nil {
		logging.WarnWithContext(h.logger, "catalog reload failed", "catalog_reload_failed",
			logging.String("path", h.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the catalog JSON; the previous catalog stays active"),
			logging.String(logging.FieldImpact, "matches keep using the previous catalog"),
		)
		return h.Current(), err
	}
	prev := h.current.Swap(cat)
	h.logger.Info("catalog reloaded",
		logging.String("path", h.path),
		logging.Int("entries", cat.Len()),
		logging.String("version", cat.Version()),
		logging.String("previous_version", prev.Version()),
	)
	return cat, nil
}
