package rerankcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"modmatch/internal/catalog"
	"modmatch/internal/logging"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrNotFound is returned by Remove when the key is not cached.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one cached provider response.
type Entry struct {
	Key      string                      `json:"key" yaml:"key"`
	Provider string                      `json:"provider,omitempty" yaml:"provider,omitempty"`
	Scores   map[catalog.EntryID]float64 `json:"scores" yaml:"scores"`
	CachedAt time.Time                   `json:"cached_at" yaml:"cached_at"`
}

// Store is a SQLite-backed re-rank score cache. It satisfies the matcher's
// RerankCache interface.
type Store struct {
	db       *sql.DB
	path     string
	provider string
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProvider records the provider name alongside every stored entry.
func WithProvider(name string) Option {
	return func(s *Store) { s.provider = strings.TrimSpace(name) }
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the cache database at path.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("rerank cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = logging.NewComponentLogger(store.logger, "rerankcache")

	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached scores for key. Entries written by a different
// provider are treated as missing.
func (s *Store) Get(ctx context.Context, key string) (map[catalog.EntryID]float64, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	var raw string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT scores_json FROM rerank_scores WHERE cache_key = ? AND provider = ?", key, s.provider).Scan(&raw)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get rerank scores: %w", err)
	}
	scores, err := decodeScores(raw)
	if err != nil {
		return nil, false, err
	}
	return scores, true, nil
}

// Put stores scores under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, scores map[catalog.EntryID]float64) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if scores == nil {
		scores = map[catalog.EntryID]float64{}
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	err = s.exec(ctx,
		`INSERT INTO rerank_scores (cache_key, provider, scores_json, cached_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET provider = excluded.provider,
             scores_json = excluded.scores_json, cached_at = excluded.cached_at`,
		key, s.provider, string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put rerank scores: %w", err)
	}
	s.logger.Debug("cached rerank scores",
		logging.String("cache_key", key),
		logging.Int("candidate_count", len(scores)))
	return nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT cache_key, provider, scores_json, cached_at FROM rerank_scores ORDER BY cached_at DESC, cache_key")
	if err != nil {
		return nil, fmt.Errorf("list rerank scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			raw      string
			cachedAt string
		)
		if err := rows.Scan(&entry.Key, &entry.Provider, &raw, &cachedAt); err != nil {
			return nil, fmt.Errorf("scan rerank scores: %w", err)
		}
		if entry.Scores, err = decodeScores(raw); err != nil {
			return nil, err
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, cachedAt); parseErr == nil {
			entry.CachedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rerank scores: %w", err)
	}
	return entries, nil
}

// Remove deletes one entry by key.
func (s *Store) Remove(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM rerank_scores WHERE cache_key = ?", key)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("remove rerank scores: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM rerank_scores")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear rerank scores: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("cleared rerank cache", logging.Int64("removed", n))
	return n, nil
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM rerank_scores").Scan(&n); err != nil {
		return 0, fmt.Errorf("count rerank scores: %w", err)
	}
	return n, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func decodeScores(raw string) (map[catalog.EntryID]float64, error) {
	scores := map[catalog.EntryID]float64{}
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("decode rerank scores: %w", err)
	}
	return scores, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
