package testsupport

import (
	"testing"
	"time"

	"modmatch/internal/config"
	"modmatch/internal/rerankcache"
)

// MustOpenRerankCache opens the SQLite re-rank cache for tests and registers cleanup.
func MustOpenRerankCache(t testing.TB, cfg *config.Config, opts ...rerankcache.Option) *rerankcache.Store {
	t.Helper()

	store, err := rerankcache.Open(cfg.RerankCachePath(), opts...)
	if err != nil {
		t.Fatalf("rerankcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// StepClock returns a clock that advances by step on every call, starting at start.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
