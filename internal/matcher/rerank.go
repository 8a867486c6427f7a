package matcher

import (
	"context"
	"encoding/hex"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"modmatch/internal/catalog"
	"modmatch/internal/logging"
	"modmatch/internal/signals"
)

// RerankWeight converts a re-rank score in [0,1] into a score bonus.
const RerankWeight = 10.0

// RerankRequest is what a provider sees for one review result.
type RerankRequest struct {
	Key        string
	Signals    signals.FolderSignals
	Candidates []Candidate
	Catalog    *catalog.Catalog
}

// Reranker scores a shortlist of candidates in [0,1]. Implementations may
// perform network I/O and must honor ctx.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, req RerankRequest) (map[catalog.EntryID]float64, error)
}

// RerankCache stores provider scores by request key.
type RerankCache interface {
	Get(ctx context.Context, key string) (map[catalog.EntryID]float64, bool, error)
	Put(ctx context.Context, key string, scores map[catalog.EntryID]float64) error
}

// RerankContext carries the provider, its cache and the promotion rule. It
// is owned by the application wiring and passed to New; the matcher keeps
// no global re-rank state.
type RerankContext struct {
	Provider  Reranker
	Cache     RerankCache
	Threshold float64
	Margin    float64
	Shortlist int
}

// RerankKey derives the cache key for a shortlist from the folder
// fingerprint, signal mode and catalog version.
func RerankKey(fingerprint string, mode signals.Mode, catalogVersion string, ids []catalog.EntryID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(int(id)))
	}
	sum := blake3.Sum256([]byte(strings.Join([]string{fingerprint, string(mode), catalogVersion, strings.Join(parts, ",")}, "|")))
	return hex.EncodeToString(sum[:])
}

func (rc *RerankContext) shortlistSize() int {
	if rc.Shortlist <= 0 {
		return 5
	}
	return rc.Shortlist
}

// apply re-ranks a review result. Provider or cache failures leave the
// result unchanged apart from a trace entry.
func (rc *RerankContext) apply(ctx context.Context, cat *catalog.Catalog, res Result, logger *slog.Logger) Result {
	if rc == nil || rc.Provider == nil || res.Status != StatusNeedsReview || len(res.TopK) == 0 {
		return res
	}
	shortlist := res.TopK
	if n := rc.shortlistSize(); len(shortlist) > n {
		shortlist = shortlist[:n]
	}
	ids := make([]catalog.EntryID, 0, len(shortlist))
	for _, c := range shortlist {
		ids = append(ids, c.EntryID)
	}
	key := RerankKey(res.Signals.Fingerprint, res.Signals.Mode, cat.Version(), ids)

	scores, cached := rc.lookup(ctx, key, logger)
	if !cached {
		var err error
		scores, err = rc.Provider.Rerank(ctx, RerankRequest{
			Key:        key,
			Signals:    res.Signals,
			Candidates: append([]Candidate(nil), shortlist...),
			Catalog:    cat,
		})
		if err != nil {
			logging.WarnWithContext(logger, "re-rank provider failed", "rerank_failed",
				logging.String("provider", rc.Provider.Name()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check provider connectivity and credentials"),
				logging.String(logging.FieldImpact, "result stays in review without re-rank"),
			)
			res.Trace = append(append([]StageTrace(nil), res.Trace...), StageTrace{Stage: stageRerank, Outcome: "provider_failed"})
			return res
		}
		scores = sanitizeScores(scores, ids)
		if rc.Cache != nil {
			if err := rc.Cache.Put(ctx, key, scores); err != nil {
				logging.WarnWithContext(logger, "re-rank cache write failed", "rerank_cache_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "the next run will query the provider again"),
				)
			}
		}
	} else {
		scores = sanitizeScores(scores, ids)
	}
	return rc.promote(res, shortlist, scores, cached)
}

func (rc *RerankContext) lookup(ctx context.Context, key string, logger *slog.Logger) (map[catalog.EntryID]float64, bool) {
	if rc.Cache == nil {
		return nil, false
	}
	scores, ok, err := rc.Cache.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "re-rank cache read failed", "rerank_cache_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to the provider"),
		)
		return nil, false
	}
	return scores, ok
}

// sanitizeScores keeps shortlisted ids and clamps scores into [0,1].
func sanitizeScores(scores map[catalog.EntryID]float64, ids []catalog.EntryID) map[catalog.EntryID]float64 {
	out := make(map[catalog.EntryID]float64, len(ids))
	for _, id := range ids {
		s, ok := scores[id]
		if !ok || math.IsNaN(s) {
			continue
		}
		out[id] = math.Max(0, math.Min(1, s))
	}
	return out
}

// promote adds re-rank bonuses and upgrades the result when the re-rank
// winner clears the threshold by the margin and also leads after bonuses.
func (rc *RerankContext) promote(res Result, shortlist []Candidate, scores map[catalog.EntryID]float64, cached bool) Result {
	outcome := "kept_review"
	if len(scores) == 0 {
		res.Trace = append(append([]StageTrace(nil), res.Trace...), StageTrace{Stage: stageRerank, Outcome: "no_scores"})
		return res
	}

	var (
		winner        catalog.EntryID = -1
		first, second float64
	)
	for _, c := range shortlist {
		s := scores[c.EntryID]
		switch {
		case winner < 0 || s > first:
			if winner >= 0 {
				second = first
			}
			winner, first = c.EntryID, s
		case s > second:
			second = s
		}
	}

	provider := rc.Provider.Name()
	top := make([]Candidate, len(res.TopK))
	copy(top, res.TopK)
	for i := range top {
		s, ok := scores[top[i].EntryID]
		if !ok {
			continue
		}
		top[i].Score = roundScore(top[i].Score + RerankWeight*s)
		top[i].Reasons = append(append([]Reason(nil), top[i].Reasons...), RerankScore{Provider: provider, Score: s})
	}
	sortCandidates(top)

	res.TopK = top
	best := top[0]
	if first >= rc.Threshold && first-second >= rc.Margin && best.EntryID == winner {
		best.Confidence = maxConfidence(best.Confidence, ConfidenceMedium)
		top[0] = best
		res.Status = StatusAutoMatched
		res.Stage = stageRerank
		outcome = "promoted"
	}
	res.Best = &best
	if cached {
		outcome += "_cached"
	}
	res.Trace = append(append([]StageTrace(nil), res.Trace...), StageTrace{
		Stage:     stageRerank,
		Threshold: rc.Threshold,
		Touched:   len(scores),
		Leader:    best.Name,
		Score:     best.Score,
		Outcome:   outcome,
	})
	return res
}
