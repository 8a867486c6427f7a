package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatcher()
	c.normalizeIni()
	c.normalizeRerank()
	c.normalizeLLM()
	if err := c.normalizeBatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		if value, ok := os.LookupEnv("MODMATCH_CATALOG"); ok {
			c.Paths.Catalog = strings.TrimSpace(value)
		}
	}
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatcher() {
	m := &c.Matcher
	if m.TopK <= 0 {
		m.TopK = defaultTopK
	}
	if m.ReviewMinScore <= 0 {
		m.ReviewMinScore = defaultReviewMinScore
	}
	if m.QuickSeedCap <= 0 {
		m.QuickSeedCap = defaultQuickSeedCap
	}
	if m.FullSeedCap <= 0 {
		m.FullSeedCap = defaultFullSeedCap
	}
	if m.MinPool <= 0 {
		m.MinPool = defaultMinPool
	}
	if m.AmbiguityGap <= 0 {
		m.AmbiguityGap = defaultAmbiguityGap
	}
	if m.PackMinEntities <= 0 {
		m.PackMinEntities = defaultPackMinEntities
	}
	if m.ForeignWeight <= 0 {
		m.ForeignWeight = defaultForeignWeight
	}
	if m.MaxReasons <= 0 {
		m.MaxReasons = defaultMaxReasons
	}
	if m.QuickThresholdBump < 0 {
		m.QuickThresholdBump = 0
	}
	if len(m.Stages) > 0 {
		stages := make(map[string]StageTuning, len(m.Stages))
		for name, tuning := range m.Stages {
			stages[strings.ToLower(strings.TrimSpace(name))] = tuning
		}
		m.Stages = stages
	}
}

func (c *Config) normalizeIni() {
	c.Ini.SectionPrefixes = cleanList(c.Ini.SectionPrefixes, false)
	c.Ini.KeyWhitelist = cleanList(c.Ini.KeyWhitelist, true)
	c.Ini.KeyBlacklist = cleanList(c.Ini.KeyBlacklist, true)
	c.Ini.IgnoredTokens = cleanList(c.Ini.IgnoredTokens, true)
}

func (c *Config) normalizeRerank() {
	r := &c.Rerank
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
	if r.Provider == "" {
		r.Provider = RerankProviderNone
	}
	r.Cache = strings.ToLower(strings.TrimSpace(r.Cache))
	if r.Cache == "" {
		r.Cache = RerankCacheMemory
	}
	if r.Threshold <= 0 {
		r.Threshold = defaultRerankThreshold
	}
	if r.Margin <= 0 {
		r.Margin = defaultRerankMargin
	}
	if r.Shortlist <= 0 {
		r.Shortlist = defaultRerankShortlist
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = defaultRerankTimeoutSeconds
	}
	if r.RatePerSecond <= 0 {
		r.RatePerSecond = defaultRerankRatePerSecond
	}
	if r.Burst <= 0 {
		r.Burst = defaultRerankBurst
	}
	if r.BreakerFailures <= 0 {
		r.BreakerFailures = defaultRerankBreakerFailures
	}
	if r.BreakerCooldownSeconds <= 0 {
		r.BreakerCooldownSeconds = defaultRerankBreakerCooldown
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeBatch() error {
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = runtime.NumCPU()
	}
	if c.Batch.ScanDepth <= 0 {
		c.Batch.ScanDepth = defaultBatchScanDepth
	}
	c.Batch.Excludes = cleanList(c.Batch.Excludes, false)
	if strings.TrimSpace(c.Batch.MetricsFile) != "" {
		var err error
		if c.Batch.MetricsFile, err = expandPath(strings.TrimSpace(c.Batch.MetricsFile)); err != nil {
			return fmt.Errorf("batch.metrics_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
