package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"modmatch/internal/catalog"
	"modmatch/internal/config"
	"modmatch/internal/folderscan"
	"modmatch/internal/logging"
	"modmatch/internal/matcher"
	"modmatch/internal/metrics"
	"modmatch/internal/services"
	"modmatch/internal/signals"
)

// ErrBatchRunning is returned when another process holds the batch lock.
var ErrBatchRunning = errors.New("another modmatch batch is already running")

// CatalogSource yields the catalog to match against. catalog.Holder
// satisfies it, so a watched catalog swaps in between folders.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// FolderResult is the outcome for one folder.
type FolderResult struct {
	Folder   string           `json:"folder" yaml:"folder"`
	Result   *matcher.Result  `json:"result,omitempty" yaml:"result,omitempty"`
	Summary  matcher.Summary  `json:"summary" yaml:"summary"`
	Mode     signals.Mode     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Fallback bool             `json:"fallback" yaml:"fallback"`
	Outcome  services.Outcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration    `json:"duration_ns" yaml:"duration_ns"`
}

// Report summarizes one run. Results keep the input folder order.
type Report struct {
	CorrelationID string                 `json:"correlation_id" yaml:"correlation_id"`
	StartedAt     time.Time              `json:"started_at" yaml:"started_at"`
	Duration      time.Duration          `json:"duration_ns" yaml:"duration_ns"`
	Results       []FolderResult         `json:"results" yaml:"results"`
	Counts        map[matcher.Status]int `json:"counts" yaml:"counts"`
	Failed        int                    `json:"failed" yaml:"failed"`
	Skipped       int                    `json:"skipped" yaml:"skipped"`
}

// Runner executes batch runs.
type Runner struct {
	cfg     *config.Config
	catalog CatalogSource
	matcher *matcher.Matcher
	ini     signals.IniConfig
	metrics *metrics.BatchMetrics
	logger  *slog.Logger
	hint    matcher.TypeHint
	mode    signals.Mode
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTypeHint applies hint to every folder.
func WithTypeHint(hint matcher.TypeHint) Option {
	return func(r *Runner) { r.hint = hint }
}

// WithMode forces a single signal mode instead of Quick then Full.
func WithMode(mode signals.Mode) Option {
	return func(r *Runner) { r.mode = mode }
}

// WithMetrics records into m instead of a fresh registry.
func WithMetrics(m *metrics.BatchMetrics) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New builds a runner. m carries the policy and optional re-rank context.
func New(cfg *config.Config, cat CatalogSource, m *matcher.Matcher, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		catalog: cat,
		matcher: m,
		ini:     signals.NewIniConfig(cfg.Ini),
		metrics: metrics.NewBatchMetrics(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r
}

// Metrics returns the runner's metrics.
func (r *Runner) Metrics() *metrics.BatchMetrics {
	return r.metrics
}

// Run matches folders under the batch lock. Per-folder failures are
// recorded in the report; the returned error covers only run-level failures
// such as the lock being held or the context ending.
func (r *Runner) Run(ctx context.Context, folders []string) (Report, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return Report{}, err
	}
	lock := flock.New(r.cfg.BatchLockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		return Report{}, ErrBatchRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release batch lock", logging.Error(err))
		}
	}()

	report := Report{
		CorrelationID: uuid.NewString(),
		StartedAt:     time.Now(),
		Results:       make([]FolderResult, len(folders)),
		Counts:        make(map[matcher.Status]int),
	}
	ctx = services.WithRequestID(ctx, report.CorrelationID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("folder_count", len(folders)),
		logging.Int("concurrency", r.cfg.Batch.Concurrency),
	)

	cache := signals.NewCache()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Batch.Concurrency))
	for i, folder := range folders {
		report.Results[i] = FolderResult{Folder: folder}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = r.matchFolder(gctx, folder, cache)
			return nil
		})
	}
	runErr := g.Wait()
	report.Duration = time.Since(report.StartedAt)

	for _, res := range report.Results {
		switch {
		case res.Outcome == services.OutcomeSkipped:
			report.Skipped++
		case res.Outcome == services.OutcomeFailed:
			report.Failed++
		case res.Result != nil:
			report.Counts[res.Result.Status]++
		}
	}

	if path := r.cfg.Batch.MetricsFile; path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			logging.WarnWithContext(logger, "metrics export failed", "metrics_export_failed",
				logging.Error(err),
				logging.String("path", path),
				logging.String(logging.FieldImpact, "batch metrics for this run are not exported"),
			)
		}
	}

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("auto_matched", report.Counts[matcher.StatusAutoMatched]),
		logging.Int("needs_review", report.Counts[matcher.StatusNeedsReview]),
		logging.Int("no_match", report.Counts[matcher.StatusNoMatch]),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
		logging.Int("signal_snapshots", cache.Len()),
		logging.Duration("duration", report.Duration),
	)
	if runErr != nil {
		return report, fmt.Errorf("batch interrupted: %w", runErr)
	}
	return report, nil
}

// MatchFolder scans and matches one folder without taking the batch lock.
// Signals are collected fresh on every call.
func (r *Runner) MatchFolder(ctx context.Context, folder string) FolderResult {
	return r.matchFolder(ctx, folder, signals.NewCache())
}

// matchFolder matches one folder, reusing signal snapshots from cache. The
// cache must not outlive the batch that created it.
func (r *Runner) matchFolder(ctx context.Context, folder string, cache *signals.Cache) FolderResult {
	start := time.Now()
	out := FolderResult{Folder: folder}
	ctx = services.WithFolder(ctx, folder)
	logger := logging.WithContext(ctx, r.logger)

	r.metrics.StartFolder()
	cat := r.catalog.Current()
	if cat == nil {
		return r.fail(logger, out, start, services.Wrap(services.ErrConfiguration, "batch", "catalog", "no catalog loaded", nil))
	}
	contents, err := folderscan.Scan(folder, folderscan.Options{
		MaxDepth: r.cfg.Batch.ScanDepth,
		Excludes: r.cfg.Batch.Excludes,
	})
	if err != nil {
		return r.fail(logger, out, start, err)
	}
	fsys := os.DirFS(contents.Root)

	pass := func(m *matcher.Matcher, mode signals.Mode) matcher.Result {
		passStart := time.Now()
		sig := cache.GetOrCollect(contents.Root, mode, func() signals.FolderSignals {
			return signals.Collect(fsys, contents, mode, r.ini)
		})
		res := m.Match(services.WithMode(ctx, string(mode)), cat, sig, r.hint)
		r.metrics.ObservePass(string(mode), sig.Counters.BytesScanned, time.Since(passStart))
		return res
	}

	var res matcher.Result
	switch {
	case r.mode != "":
		out.Mode = r.mode
		res = pass(r.matcher, r.mode)
	case r.cfg.Batch.QuickFirst:
		// Re-rank only runs on the final pass; a quick result that needs
		// review is always retried in full.
		out.Mode = signals.ModeQuick
		res = pass(r.matcher.WithoutRerank(), signals.ModeQuick)
		if res.Status != matcher.StatusAutoMatched {
			r.metrics.ObserveFallback()
			logger.Debug("quick pass inconclusive, retrying with full budget",
				logging.Args(logging.DecisionAttrs("signal_budget", string(signals.ModeFull), "quick_"+string(res.Status))...)...)
			out.Mode = signals.ModeFull
			out.Fallback = true
			res = pass(r.matcher, signals.ModeFull)
		}
	default:
		out.Mode = signals.ModeFull
		res = pass(r.matcher, signals.ModeFull)
	}

	out.Result = &res
	out.Summary = matcher.Describe(res)
	out.Duration = time.Since(start)
	r.metrics.FinishFolder(string(res.Status), res.Stage, out.Duration)
	return out
}

func (r *Runner) fail(logger *slog.Logger, out FolderResult, start time.Time, err error) FolderResult {
	out.Outcome = services.FailureOutcome(err)
	out.Error = err.Error()
	out.Duration = time.Since(start)
	r.metrics.FailFolder(string(out.Outcome))
	logging.WarnWithContext(logger, "folder could not be matched", "folder_failed",
		logging.Error(err),
		logging.String("outcome", string(out.Outcome)),
		logging.String(logging.FieldImpact, "folder is left out of the batch results"),
	)
	return out
}
