package rerank

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"modmatch/internal/config"
	"modmatch/internal/logging"
	"modmatch/internal/matcher"
	"modmatch/internal/rerankcache"
	"modmatch/internal/services"
	"modmatch/internal/services/llm"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the re-rank context described by cfg. It returns a nil context
// when re-ranking is disabled. The returned closer releases the cache
// backend and is always non-nil.
func New(cfg *config.Config, logger *slog.Logger) (*matcher.RerankContext, io.Closer, error) {
	if cfg == nil || !cfg.RerankEnabled() {
		return nil, nopCloser{}, nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var provider matcher.Reranker
	switch cfg.Rerank.Provider {
	case config.RerankProviderLexical:
		provider = NewLexical()
	case config.RerankProviderLLM:
		provider = NewLLM(NewLLMClient(cfg))
	default:
		return nil, nopCloser{}, services.Wrap(services.ErrConfiguration, "rerank", "init",
			fmt.Sprintf("unknown provider %q", cfg.Rerank.Provider), nil)
	}

	guarded := NewGuarded(provider, GuardOptions{
		Timeout:         time.Duration(cfg.Rerank.TimeoutSeconds) * time.Second,
		RatePerSecond:   cfg.Rerank.RatePerSecond,
		Burst:           cfg.Rerank.Burst,
		BreakerFailures: cfg.Rerank.BreakerFailures,
		BreakerCooldown: time.Duration(cfg.Rerank.BreakerCooldownSeconds) * time.Second,
		Logger:          logger,
	})

	rc := &matcher.RerankContext{
		Provider:  guarded,
		Threshold: cfg.Rerank.Threshold,
		Margin:    cfg.Rerank.Margin,
		Shortlist: cfg.Rerank.Shortlist,
	}
	var closer io.Closer = nopCloser{}
	switch cfg.Rerank.Cache {
	case config.RerankCacheMemory:
		rc.Cache = NewMemoryCache()
	case config.RerankCacheSQLite:
		store, err := rerankcache.Open(cfg.RerankCachePath(),
			rerankcache.WithLogger(logger),
			rerankcache.WithProvider(provider.Name()),
		)
		if err != nil {
			return nil, nopCloser{}, services.Wrap(services.ErrConfiguration, "rerank", "open cache", cfg.RerankCachePath(), err)
		}
		rc.Cache = store
		closer = store
	}
	return rc, closer, nil
}

// NewLLMClient builds the chat client for the llm provider from cfg.
func NewLLMClient(cfg *config.Config) *llm.Client {
	settings := cfg.GetLLM()
	return llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	})
}
