package testsupport

import (
	"path/filepath"
	"testing"

	"modmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Catalog = filepath.Join(base, "catalog.json")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Batch.Concurrency = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSampleCatalog writes the fixture catalog to the configured catalog path.
func WithSampleCatalog() ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.Catalog, SampleCatalogJSON)
	}
}

// WithRerank selects a re-rank provider and cache backend.
func WithRerank(provider, cache string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rerank.Provider = provider
		b.cfg.Rerank.Cache = cache
	}
}

// WithMetricsFile enables the batch metrics textfile inside the temp dir.
func WithMetricsFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.MetricsFile = filepath.Join(b.baseDir, "metrics", "modmatch.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Catalog)
}
