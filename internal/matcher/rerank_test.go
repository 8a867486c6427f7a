package matcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"modmatch/internal/catalog"
	"modmatch/internal/signals"
	"modmatch/internal/testsupport"
)

type stubReranker struct {
	scores map[catalog.EntryID]float64
	err    error
	calls  int
	last   RerankRequest
}

func (s *stubReranker) Name() string { return "stub" }

func (s *stubReranker) Rerank(_ context.Context, req RerankRequest) (map[catalog.EntryID]float64, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]map[catalog.EntryID]float64
}

func (c *mapCache) Get(_ context.Context, key string) (map[catalog.EntryID]float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Put(_ context.Context, key string, scores map[catalog.EntryID]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string]map[catalog.EntryID]float64{}
	}
	c.data[key] = scores
	return nil
}

func reviewSignals(t *testing.T) signals.FolderSignals {
	return folderSignals(t, "Kamisato", nil, signals.ModeFull)
}

func TestRerankPromotesClearWinner(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	provider := &stubReranker{scores: map[catalog.EntryID]float64{
		testsupport.KamisatoAyaka: 0.9,
		testsupport.KamisatoAyato: 0.2,
		testsupport.Nahida:        1.0, // not shortlisted, ignored
	}}
	cache := &mapCache{}
	m := New(DefaultPolicy(), WithRerank(&RerankContext{
		Provider: provider, Cache: cache, Threshold: 0.8, Margin: 0.15, Shortlist: 5,
	}))

	res := m.Match(context.Background(), cat, reviewSignals(t), TypeHint{})
	if res.Status != StatusAutoMatched || res.Stage != stageRerank {
		t.Fatalf("status = %s stage = %s", res.Status, res.Stage)
	}
	if res.Best.EntryID != testsupport.KamisatoAyaka || !hasReason[RerankScore](res.Best.Reasons) {
		t.Fatalf("best = %+v", res.Best)
	}
	if len(provider.last.Candidates) != 2 || provider.last.Key == "" {
		t.Fatalf("request = %+v", provider.last)
	}

	again := m.Match(context.Background(), cat, reviewSignals(t), TypeHint{})
	if provider.calls != 1 {
		t.Fatalf("cached result should skip provider, calls = %d", provider.calls)
	}
	if again.Status != StatusAutoMatched || again.Best.EntryID != res.Best.EntryID {
		t.Fatalf("cached rerank differs: %+v", again.Best)
	}
}

func TestRerankKeepsReviewWithoutMargin(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	provider := &stubReranker{scores: map[catalog.EntryID]float64{
		testsupport.KamisatoAyaka: 0.85,
		testsupport.KamisatoAyato: 0.8,
	}}
	m := New(DefaultPolicy(), WithRerank(&RerankContext{Provider: provider, Threshold: 0.8, Margin: 0.15}))
	res := m.Match(context.Background(), cat, reviewSignals(t), TypeHint{})
	if res.Status != StatusNeedsReview {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Trace[len(res.Trace)-1].Outcome != "kept_review" {
		t.Fatalf("trace = %+v", res.Trace)
	}
}

func TestRerankFailureFallsBack(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	provider := &stubReranker{err: errors.New("boom")}
	m := New(DefaultPolicy(), WithRerank(&RerankContext{Provider: provider, Threshold: 0.8, Margin: 0.15}))
	base := Match(context.Background(), cat, reviewSignals(t), TypeHint{})

	res := m.Match(context.Background(), cat, reviewSignals(t), TypeHint{})
	if res.Status != StatusNeedsReview || provider.calls != 1 {
		t.Fatalf("status = %s calls = %d", res.Status, provider.calls)
	}
	if len(res.TopK) != len(base.TopK) || res.TopK[0].Score != base.TopK[0].Score {
		t.Fatalf("failed rerank must keep original candidates")
	}
	if res.Trace[len(res.Trace)-1].Outcome != "provider_failed" {
		t.Fatalf("trace = %+v", res.Trace)
	}
}

func TestRerankSkipsNonReviewResults(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	provider := &stubReranker{}
	m := New(DefaultPolicy(), WithRerank(&RerankContext{Provider: provider, Threshold: 0.8, Margin: 0.15}))
	sig := folderSignals(t, "Unnamed", map[string]string{"mod.ini": uniqueHashIni}, signals.ModeFull)
	m.Match(context.Background(), cat, sig, TypeHint{})
	m.Match(context.Background(), cat, folderSignals(t, "Nahdia", nil, signals.ModeFull), TypeHint{})
	if provider.calls != 0 {
		t.Fatalf("provider called %d times for non-review results", provider.calls)
	}
}

func TestRerankKeyDependsOnInputs(t *testing.T) {
	ids := []catalog.EntryID{1, 2}
	base := RerankKey("fp", signals.ModeFull, "v1", ids)
	if base != RerankKey("fp", signals.ModeFull, "v1", []catalog.EntryID{1, 2}) {
		t.Fatal("key must be deterministic")
	}
	for _, other := range []string{
		RerankKey("fp2", signals.ModeFull, "v1", ids),
		RerankKey("fp", signals.ModeQuick, "v1", ids),
		RerankKey("fp", signals.ModeFull, "v2", ids),
		RerankKey("fp", signals.ModeFull, "v1", []catalog.EntryID{2, 1}),
	} {
		if other == base {
			t.Fatal("key collision across differing inputs")
		}
	}
}

func TestSanitizeScores(t *testing.T) {
	got := sanitizeScores(map[catalog.EntryID]float64{1: 1.7, 2: -0.3, 3: 0.5}, []catalog.EntryID{1, 2})
	if len(got) != 2 || got[1] != 1 || got[2] != 0 {
		t.Fatalf("sanitizeScores = %v", got)
	}
}
