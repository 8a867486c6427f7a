package config

const (
	defaultConfigPath = "~/.config/modmatch/config.toml"
	defaultLogDir     = "~/.local/share/modmatch/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultTopK               = 5
	defaultReviewMinScore     = 2.5
	defaultQuickSeedCap       = 64
	defaultFullSeedCap        = 128
	defaultMinPool            = 8
	defaultAmbiguityGap       = 1.0
	defaultPackMinEntities    = 3
	defaultForeignWeight      = 0.5
	defaultMaxReasons         = 12
	defaultQuickThresholdBump = 1.0

	defaultRerankThreshold       = 0.80
	defaultRerankMargin          = 0.15
	defaultRerankShortlist       = 5
	defaultRerankTimeoutSeconds  = 20
	defaultRerankRatePerSecond   = 2
	defaultRerankBurst           = 2
	defaultRerankBreakerFailures = 3
	defaultRerankBreakerCooldown = 60

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/modmatch/modmatch"
	defaultLLMTitle          = "modmatch re-rank"
	defaultLLMTimeoutSeconds = 30

	defaultBatchScanDepth = 3
)

// Re-rank provider identifiers.
const (
	RerankProviderNone    = "none"
	RerankProviderLexical = "lexical"
	RerankProviderLLM     = "llm"
)

// Re-rank cache backends.
const (
	RerankCacheNone   = "none"
	RerankCacheMemory = "memory"
	RerankCacheSQLite = "sqlite"
)

var (
	defaultSectionPrefixes = []string{
		"TextureOverride", "ShaderOverride", "ShaderRegex", "Resource",
		"CommandList", "Constants", "Key", "Present",
	}
	defaultKeyWhitelist = []string{"filename", "name", "*_name", "author", "character", "target"}
	defaultKeyBlacklist = []string{
		"hash", "match_*", "handling", "drawindexed", "draw", "run", "format",
		"stride", "type", "condition", "vb*", "ib", "ps-t*", "vs-t*", "cs-t*",
		"$*", "x", "y", "z", "w",
	}
	defaultIgnoredTokens = []string{
		"body", "head", "face", "dress", "hair", "extra", "blend", "position",
		"texcoord", "diffuse", "lightmap", "normalmap", "shadow", "glow",
		"override", "texture", "shader", "resource", "commandlist", "constants",
		"present", "main", "frame", "toggle", "swap", "var", "global", "persist",
		"default", "base", "remap", "buffer", "vertex", "index",
	}
	defaultBatchExcludes = []string{"**/.git", "**/.git/**", "**/__MACOSX/**", "**/DISABLED*"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Matcher: Matcher{
			TopK:               defaultTopK,
			ReviewMinScore:     defaultReviewMinScore,
			QuickSeedCap:       defaultQuickSeedCap,
			FullSeedCap:        defaultFullSeedCap,
			MinPool:            defaultMinPool,
			AmbiguityGap:       defaultAmbiguityGap,
			PackMinEntities:    defaultPackMinEntities,
			ForeignWeight:      defaultForeignWeight,
			MaxReasons:         defaultMaxReasons,
			QuickThresholdBump: defaultQuickThresholdBump,
			Rescue:             true,
		},
		Ini: Ini{
			SectionPrefixes: append([]string(nil), defaultSectionPrefixes...),
			KeyWhitelist:    append([]string(nil), defaultKeyWhitelist...),
			KeyBlacklist:    append([]string(nil), defaultKeyBlacklist...),
			IgnoredTokens:   append([]string(nil), defaultIgnoredTokens...),
		},
		Rerank: Rerank{
			Provider:               RerankProviderNone,
			Cache:                  RerankCacheMemory,
			Threshold:              defaultRerankThreshold,
			Margin:                 defaultRerankMargin,
			Shortlist:              defaultRerankShortlist,
			TimeoutSeconds:         defaultRerankTimeoutSeconds,
			RatePerSecond:          defaultRerankRatePerSecond,
			Burst:                  defaultRerankBurst,
			BreakerFailures:        defaultRerankBreakerFailures,
			BreakerCooldownSeconds: defaultRerankBreakerCooldown,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Batch: Batch{
			ScanDepth:  defaultBatchScanDepth,
			Excludes:   append([]string(nil), defaultBatchExcludes...),
			QuickFirst: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
