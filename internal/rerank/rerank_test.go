package rerank_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"modmatch/internal/catalog"
	"modmatch/internal/config"
	"modmatch/internal/matcher"
	"modmatch/internal/rerank"
	"modmatch/internal/rerankcache"
	"modmatch/internal/services"
	"modmatch/internal/services/llm"
	"modmatch/internal/signals"
	"modmatch/internal/testsupport"
)

func kamisatoRequest(t *testing.T) matcher.RerankRequest {
	t.Helper()
	cat := testsupport.SampleCatalog(t)
	return matcher.RerankRequest{
		Key: "k",
		Signals: signals.FolderSignals{
			FolderName: "Kamisato Ayaka Summer",
			NameTokens: []string{"ayaka", "kamisato", "summer"},
			IniStrings: []string{"AyakaBody", "AyakaHead"},
			IniTokens:  []string{"ayaka", "body", "head"},
		},
		Candidates: []matcher.Candidate{
			{EntryID: testsupport.KamisatoAyaka, Name: "Kamisato Ayaka", ObjectType: "Character"},
			{EntryID: testsupport.KamisatoAyato, Name: "Kamisato Ayato", ObjectType: "Character"},
		},
		Catalog: cat,
	}
}

func TestLexicalPrefersSharedRareTokens(t *testing.T) {
	scores, err := rerank.NewLexical().Rerank(context.Background(), kamisatoRequest(t))
	if err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}
	ayaka, ayato := scores[testsupport.KamisatoAyaka], scores[testsupport.KamisatoAyato]
	if ayaka <= ayato {
		t.Fatalf("expected Ayaka (%.3f) above Ayato (%.3f)", ayaka, ayato)
	}
	if ayaka <= 0 || ayaka > 1 {
		t.Fatalf("score out of range: %.3f", ayaka)
	}
}

func TestLexicalRequiresCatalog(t *testing.T) {
	req := kamisatoRequest(t)
	req.Catalog = nil
	if _, err := rerank.NewLexical().Rerank(context.Background(), req); err == nil {
		t.Fatal("expected error without catalog")
	}
}

type fakeRanker struct {
	req    llm.RankRequest
	scores []llm.RankScore
	err    error
}

func (f *fakeRanker) RankCandidates(_ context.Context, req llm.RankRequest) ([]llm.RankScore, error) {
	f.req = req
	return f.scores, f.err
}

func TestLLMBuildsRequestAndMapsScores(t *testing.T) {
	fake := &fakeRanker{scores: []llm.RankScore{{ID: int(testsupport.KamisatoAyaka), Score: 0.8}}}
	scores, err := rerank.NewLLM(fake).Rerank(context.Background(), kamisatoRequest(t))
	if err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}
	if scores[testsupport.KamisatoAyaka] != 0.8 || len(scores) != 1 {
		t.Fatalf("unexpected scores %v", scores)
	}
	if fake.req.Folder != "Kamisato Ayaka Summer" {
		t.Fatalf("folder = %q", fake.req.Folder)
	}
	if len(fake.req.Candidates) != 2 || fake.req.Candidates[0].Tags[0] != "cryo" {
		t.Fatalf("candidates = %+v", fake.req.Candidates)
	}
	// INI strings first, then INI tokens; duplicates dropped.
	want := []string{"AyakaBody", "AyakaHead", "ayaka", "body", "head"}
	if len(fake.req.Evidence) != len(want) {
		t.Fatalf("evidence = %v", fake.req.Evidence)
	}
	for i := range want {
		if fake.req.Evidence[i] != want[i] {
			t.Fatalf("evidence = %v, want %v", fake.req.Evidence, want)
		}
	}
}

func TestLLMPropagatesErrors(t *testing.T) {
	fake := &fakeRanker{err: errors.New("upstream down")}
	if _, err := rerank.NewLLM(fake).Rerank(context.Background(), kamisatoRequest(t)); err == nil {
		t.Fatal("expected error")
	}
}

type countingReranker struct {
	calls int
	err   error
	block bool
}

func (c *countingReranker) Name() string { return "counting" }

func (c *countingReranker) Rerank(ctx context.Context, _ matcher.RerankRequest) (map[catalog.EntryID]float64, error) {
	c.calls++
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return map[catalog.EntryID]float64{0: 1}, nil
}

func TestGuardedOpensBreaker(t *testing.T) {
	inner := &countingReranker{err: errors.New("boom")}
	g := rerank.NewGuarded(inner, rerank.GuardOptions{BreakerFailures: 2, BreakerCooldown: time.Hour})
	req := matcher.RerankRequest{}

	for i := 0; i < 2; i++ {
		if _, err := g.Rerank(context.Background(), req); err == nil || rerank.IsCircuitOpen(err) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}
	_, err := g.Rerank(context.Background(), req)
	if !rerank.IsCircuitOpen(err) || !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner called %d times, want 2", inner.calls)
	}
	if g.Name() != "counting" {
		t.Fatalf("Name = %q", g.Name())
	}
}

func TestGuardedAppliesTimeout(t *testing.T) {
	inner := &countingReranker{block: true}
	g := rerank.NewGuarded(inner, rerank.GuardOptions{Timeout: 20 * time.Millisecond})
	_, err := g.Rerank(context.Background(), matcher.RerankRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGuardedRateLimitHonorsContext(t *testing.T) {
	inner := &countingReranker{}
	g := rerank.NewGuarded(inner, rerank.GuardOptions{RatePerSecond: 0.001, Burst: 1})
	if _, err := g.Rerank(context.Background(), matcher.RerankRequest{}); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Rerank(ctx, matcher.RerankRequest{})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected rate limit timeout, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner called %d times", inner.calls)
	}
}

func TestMemoryCache(t *testing.T) {
	cache := rerank.NewMemoryCache()
	ctx := context.Background()
	in := map[catalog.EntryID]float64{1: 0.5}
	if err := cache.Put(ctx, "k", in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	in[1] = 0.9
	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || got[1] != 0.5 {
		t.Fatalf("Get = %v ok %v err %v", got, ok, err)
	}
	if _, ok, _ := cache.Get(ctx, "missing"); ok {
		t.Fatal("unexpected hit")
	}
	if cache.Len() != 1 {
		t.Fatalf("Len = %d", cache.Len())
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rc, closer, err := rerank.New(testsupport.NewConfig(t), nil)
		if err != nil || rc != nil || closer == nil {
			t.Fatalf("New = %v %v %v", rc, closer, err)
		}
	})
	t.Run("lexical with sqlite", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithRerank(config.RerankProviderLexical, config.RerankCacheSQLite))
		rc, closer, err := rerank.New(cfg, nil)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		t.Cleanup(func() { closer.Close() })
		if rc.Provider.Name() != "lexical" {
			t.Fatalf("provider = %s", rc.Provider.Name())
		}
		if _, ok := rc.Cache.(*rerankcache.Store); !ok {
			t.Fatalf("cache = %T", rc.Cache)
		}
		if rc.Threshold != cfg.Rerank.Threshold || rc.Margin != cfg.Rerank.Margin {
			t.Fatalf("promotion rule = %v/%v", rc.Threshold, rc.Margin)
		}
	})
	t.Run("memory cache", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithRerank(config.RerankProviderLexical, config.RerankCacheMemory))
		rc, _, err := rerank.New(cfg, nil)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, ok := rc.Cache.(*rerank.MemoryCache); !ok {
			t.Fatalf("cache = %T", rc.Cache)
		}
	})
	t.Run("unknown provider", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithRerank("oracle", config.RerankCacheNone))
		if _, _, err := rerank.New(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}

func TestLexicalKeepsTwinsInReview(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	sig := signals.Collect(fstest.MapFS{}, signals.FolderContents{Root: "/mods/Kamisato", Name: "Kamisato"}, signals.ModeFull, signals.DefaultIniConfig())
	m := matcher.New(matcher.DefaultPolicy(), matcher.WithRerank(&matcher.RerankContext{
		Provider: rerank.NewLexical(), Cache: rerank.NewMemoryCache(), Threshold: 0.8, Margin: 0.15,
	}))
	res := m.Match(context.Background(), cat, sig, matcher.TypeHint{})
	// Both twins share only "kamisato"; lexical cannot separate them.
	if res.Status != matcher.StatusNeedsReview {
		t.Fatalf("status = %s", res.Status)
	}
}
