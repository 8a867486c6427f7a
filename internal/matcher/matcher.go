package matcher

import (
	"context"
	"log/slog"
	"strings"

	"modmatch/internal/catalog"
	"modmatch/internal/logging"
	"modmatch/internal/signals"
)

// Matcher runs staged matches with a fixed policy. It holds no per-run
// state and is safe for concurrent use.
type Matcher struct {
	policy Policy
	logger *slog.Logger
	rerank *RerankContext
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for decision logs.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRerank installs a caller-owned re-rank context.
func WithRerank(rc *RerankContext) Option {
	return func(m *Matcher) {
		m.rerank = rc
	}
}

// New constructs a Matcher.
func New(policy Policy, opts ...Option) *Matcher {
	m := &Matcher{policy: policy.normalized(), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "matcher")
	return m
}

// WithoutRerank returns a matcher sharing m's policy and logger that never
// consults the re-rank provider.
func (m *Matcher) WithoutRerank() *Matcher {
	if m.rerank == nil {
		return m
	}
	clone := *m
	clone.rerank = nil
	return &clone
}

// Policy returns the effective policy.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Match classifies one folder. It never fails: malformed or missing
// evidence produces StatusNoMatch, and re-rank failures fall back to the
// un-reranked result. ctx bounds only the re-rank provider.
func (m *Matcher) Match(ctx context.Context, cat *catalog.Catalog, sig signals.FolderSignals, hint TypeHint) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, m.logger)

	r := newRun(cat, sig, m.policy, hint)
	res := r.execute(logger)

	if res.Status == StatusNeedsReview && m.rerank != nil {
		res = m.rerank.apply(ctx, r.cat, res, logger)
	}
	if res.Status == StatusNoMatch && !m.policy.DisableRescue {
		if rescued, ok := rescue(r.cat, sig, r.hint, m.policy); ok {
			rescued.Trace = append(res.Trace, rescued.Trace...)
			res = rescued
		}
	}

	options := make([]string, 0, len(res.TopK))
	for _, c := range res.TopK {
		options = append(options, c.Name)
	}
	attrs := logging.DecisionAttrsWithOptions("match_stage", string(res.Status), res.Stage, strings.Join(options, "|"))
	attrs = append(attrs,
		logging.String(logging.FieldStage, res.Stage),
		logging.Int("pool", r.poolSize),
		logging.Int("hashes", len(sig.Hashes)),
		logging.Int("tokens", len(r.ev.all)),
	)
	if res.Best != nil {
		attrs = append(attrs,
			logging.String("best", res.Best.Name),
			logging.Float64("score", res.Best.Score),
			logging.String("confidence", res.Best.Confidence.String()),
		)
	}
	logger.Info("match decided", logging.Args(attrs...)...)
	return res
}

// Match classifies one folder with the default policy and no re-rank.
func Match(ctx context.Context, cat *catalog.Catalog, sig signals.FolderSignals, hint TypeHint) Result {
	return New(DefaultPolicy()).Match(ctx, cat, sig, hint)
}

// run owns all mutable state of one match invocation.
type run struct {
	cat      *catalog.Catalog
	ev       *evidence
	policy   Policy
	hint     TypeHint
	quick    bool
	pool     []catalog.EntryID
	poolSize int
	states   map[catalog.EntryID]*ScoreState
	trace    []StageTrace
}

func newRun(cat *catalog.Catalog, sig signals.FolderSignals, policy Policy, hint TypeHint) *run {
	if cat == nil {
		cat = catalog.Build(nil)
	}
	return &run{
		cat:    cat,
		ev:     newEvidence(cat, sig),
		policy: policy.normalized(),
		hint:   hint.normalized(),
		quick:  sig.Mode != signals.ModeFull,
		states: make(map[catalog.EntryID]*ScoreState),
	}
}

func (r *run) seedCap() int {
	if r.quick {
		return r.policy.QuickSeedCap
	}
	return r.policy.FullSeedCap
}

// buildPool seeds the pool and applies a strict type hint, replenishing
// from token sources when filtering shrank it.
func (r *run) buildPool() {
	sig := r.ev.signals
	pool := Seed(r.cat, sig.Hashes, r.ev.all, r.seedCap())
	if r.hint.Strict && r.hint.Type != "" {
		allow := func(id catalog.EntryID) bool { return r.cat.ObjectType(id) == r.hint.Type }
		kept := pool[:0:0]
		for _, id := range pool {
			if allow(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) < len(pool) {
			kept = Replenish(r.cat, kept, r.ev.all, r.policy.MinPool, r.seedCap(), allow)
		}
		pool = kept
	}
	r.pool = pool
	r.poolSize = len(pool)
	for _, id := range pool {
		r.states[id] = newScoreState(r.cat, id, r.policy.MaxReasons)
	}
}

// applyStage scores every pooled entry for s and returns how many changed.
func (r *run) applyStage(s stage) int {
	touched := 0
	for _, id := range r.pool {
		st := r.states[id]
		c := s.score(r.cat, r.ev, id)
		if c.empty() {
			st.apply(s.id, c)
			continue
		}
		if r.hint.foreign(st.objectType) {
			c.delta *= r.policy.ForeignWeight
			if !st.foreign {
				c.reasons = append([]Reason{ForeignEvidence{ObjectType: st.objectType, Hint: r.hint.Type}}, c.reasons...)
			}
		}
		if st.apply(s.id, c) {
			touched++
		}
	}
	return touched
}

func (r *run) execute(logger *slog.Logger) Result {
	r.buildPool()
	stages := buildStages(r.policy, r.quick)
	for _, s := range stages {
		touched := r.applyStage(s)
		v := r.tryAccept(s)
		r.record(s.id, s.threshold, touched, v)
		logger.Debug("stage applied",
			logging.String(logging.FieldStage, s.id),
			logging.Int("touched", touched),
			logging.String("outcome", v.outcome),
		)
		if v.status != "" {
			return r.result(v, s.id)
		}
	}
	v := r.finalize()
	r.record(stageFinalize, r.policy.ReviewMinScore, 0, v)
	return r.result(v, stageFinalize)
}

func (r *run) record(stageID string, threshold float64, touched int, v verdict) {
	tr := StageTrace{Stage: stageID, Threshold: threshold, Touched: touched, Outcome: v.outcome}
	if len(v.ranked) > 0 {
		tr.Leader = v.ranked[0].Name
		tr.Score = v.ranked[0].Score
	}
	r.trace = append(r.trace, tr)
}

func (r *run) result(v verdict, stageID string) Result {
	res := Result{
		Status:  v.status,
		Signals: r.ev.signals,
		Stage:   stageID,
		Trace:   append([]StageTrace(nil), r.trace...),
		TopK:    []Candidate{},
	}
	if v.status == StatusNoMatch || len(v.ranked) == 0 {
		res.Status = StatusNoMatch
		return res
	}
	res.TopK = topK(v.ranked, r.policy.TopK)
	best := res.TopK[0]
	res.Best = &best
	return res
}
