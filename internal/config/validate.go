package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// StageNames lists the scoring stages that accept overrides, in pipeline order.
var StageNames = []string{
	"hash", "alias", "substring_deep", "substring_ini",
	"deep_tokens", "ini_tokens", "token_overlap", "direct_name",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validatePatterns(); err != nil {
		return err
	}
	if err := c.validateRerank(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireCatalog reports a helpful error when no catalog path is configured.
func (c *Config) RequireCatalog() error {
	if strings.TrimSpace(c.Paths.Catalog) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("paths.catalog is required. Set MODMATCH_CATALOG, pass --catalog, or edit %s (create with 'modmatch config init')", defaultPath)
}

func (c *Config) validateMatcher() error {
	m := c.Matcher
	if m.FullSeedCap < m.QuickSeedCap {
		return errors.New("matcher.full_seed_cap must be >= matcher.quick_seed_cap")
	}
	if m.MinPool > m.FullSeedCap {
		return errors.New("matcher.min_pool must be <= matcher.full_seed_cap")
	}
	if m.ForeignWeight > 1 {
		return errors.New("matcher.foreign_weight must be between 0 and 1")
	}
	if m.PackMinEntities < 2 {
		return errors.New("matcher.pack_min_entities must be >= 2")
	}
	for name, tuning := range m.Stages {
		if !knownStage(name) {
			return fmt.Errorf("matcher.stages.%s: unknown stage (valid: %s)", name, strings.Join(StageNames, ", "))
		}
		if tuning.Threshold < 0 || tuning.Margin < 0 {
			return fmt.Errorf("matcher.stages.%s: threshold and margin must be >= 0", name)
		}
	}
	return nil
}

func (c *Config) validatePatterns() error {
	groups := map[string][]string{
		"ini.key_whitelist": c.Ini.KeyWhitelist,
		"ini.key_blacklist": c.Ini.KeyBlacklist,
		"batch.excludes":    c.Batch.Excludes,
	}
	for _, key := range []string{"ini.key_whitelist", "ini.key_blacklist", "batch.excludes"} {
		for _, pattern := range groups[key] {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("%s: invalid pattern %q", key, pattern)
			}
		}
	}
	return nil
}

func (c *Config) validateRerank() error {
	r := c.Rerank
	switch r.Provider {
	case RerankProviderNone, RerankProviderLexical:
	case RerankProviderLLM:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set when rerank.provider is \"llm\" (or set OPENROUTER_API_KEY)")
		}
	default:
		return fmt.Errorf("rerank.provider: unsupported value %q (valid: none, lexical, llm)", r.Provider)
	}
	switch r.Cache {
	case RerankCacheNone, RerankCacheMemory, RerankCacheSQLite:
	default:
		return fmt.Errorf("rerank.cache: unsupported value %q (valid: none, memory, sqlite)", r.Cache)
	}
	if r.Threshold > 1 {
		return errors.New("rerank.threshold must be between 0 and 1")
	}
	if r.Margin >= 1 {
		return errors.New("rerank.margin must be between 0 and 1")
	}
	if r.Shortlist < 2 {
		return errors.New("rerank.shortlist must be >= 2")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Concurrency <= 0 {
		return errors.New("batch.concurrency must be positive")
	}
	if c.Batch.ScanDepth > 8 {
		return errors.New("batch.scan_depth must be <= 8")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func knownStage(name string) bool {
	for _, stage := range StageNames {
		if stage == name {
			return true
		}
	}
	return false
}
