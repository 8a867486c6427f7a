package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Catalog  string `toml:"catalog"`
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// StageTuning overrides the accept threshold and margin of one scoring stage.
// Zero values keep the built-in calibration.
type StageTuning struct {
	Threshold float64 `toml:"threshold"`
	Margin    float64 `toml:"margin"`
}

// Matcher contains calibration parameters for the staged matcher.
type Matcher struct {
	TopK               int                    `toml:"top_k"`
	ReviewMinScore     float64                `toml:"review_min_score"`
	QuickSeedCap       int                    `toml:"quick_seed_cap"`
	FullSeedCap        int                    `toml:"full_seed_cap"`
	MinPool            int                    `toml:"min_pool"`
	AmbiguityGap       float64                `toml:"ambiguity_gap"`
	PackMinEntities    int                    `toml:"pack_min_entities"`
	ForeignWeight      float64                `toml:"foreign_weight"`
	MaxReasons         int                    `toml:"max_reasons"`
	QuickThresholdBump float64                `toml:"quick_threshold_bump"`
	Rescue             bool                   `toml:"rescue"`
	Stages             map[string]StageTuning `toml:"stages"`
}

// Ini contains INI tokenization rules used by the signal collector.
type Ini struct {
	SectionPrefixes []string `toml:"section_prefixes"`
	KeyWhitelist    []string `toml:"key_whitelist"`
	KeyBlacklist    []string `toml:"key_blacklist"`
	IgnoredTokens   []string `toml:"ignored_tokens"`
}

// Rerank contains settings for the optional re-rank pass.
type Rerank struct {
	Provider               string  `toml:"provider"`
	Cache                  string  `toml:"cache"`
	Threshold              float64 `toml:"threshold"`
	Margin                 float64 `toml:"margin"`
	Shortlist              int     `toml:"shortlist"`
	TimeoutSeconds         int     `toml:"timeout_seconds"`
	RatePerSecond          float64 `toml:"rate_per_second"`
	Burst                  int     `toml:"burst"`
	BreakerFailures        int     `toml:"breaker_failures"`
	BreakerCooldownSeconds int     `toml:"breaker_cooldown_seconds"`
}

// LLM contains connection settings for the LLM re-rank provider.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Batch contains settings for multi-folder runs.
type Batch struct {
	Concurrency int      `toml:"concurrency"`
	ScanDepth   int      `toml:"scan_depth"`
	Excludes    []string `toml:"excludes"`
	QuickFirst  bool     `toml:"quick_first"`
	MetricsFile string   `toml:"metrics_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for modmatch.
//
// Configuration sections by subsystem:
//   - Paths: catalog file, cache and log directories
//   - Matcher: stage calibration, pool sizes, review cutoffs
//   - Ini: INI section/key tokenization rules
//   - Rerank: optional re-rank provider, cache, rate limit and breaker
//   - LLM: connection settings for the LLM provider
//   - Batch: parallelism, walker depth and excludes, metrics export
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Matcher Matcher `toml:"matcher"`
	Ini     Ini     `toml:"ini"`
	Rerank  Rerank  `toml:"rerank"`
	LLM     LLM     `toml:"llm"`
	Batch   Batch   `toml:"batch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("modmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RerankCachePath returns the SQLite database used by the persistent re-rank cache.
func (c *Config) RerankCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "rerank.db")
}

// BatchLockPath returns the lock file that serializes batch runs.
func (c *Config) BatchLockPath() string {
	return filepath.Join(c.Paths.CacheDir, "batch.lock")
}

// RerankEnabled reports whether a re-rank provider is configured.
func (c *Config) RerankEnabled() bool {
	return c.Rerank.Provider != RerankProviderNone
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "modmatch")
	}
	return "~/.cache/modmatch"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// LLMConfig contains the LLM connection settings after fallbacks are applied.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
