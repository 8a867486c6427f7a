package matcher

import (
	"strings"

	"modmatch/internal/config"
)

// Stage identifiers in evaluation order.
const (
	StageHash          = "hash"
	StageAlias         = "alias"
	StageSubstringDeep = "substring_deep"
	StageSubstringIni  = "substring_ini"
	StageDeepTokens    = "deep_tokens"
	StageIniTokens     = "ini_tokens"
	StageTokenOverlap  = "token_overlap"
	StageDirectName    = "direct_name"

	stageFinalize = "finalize"
	stageRerank   = "rerank"
	stageRescue   = "rescue"
)

// StageOrder lists the scoring stages in evaluation order.
var StageOrder = []string{
	StageHash,
	StageAlias,
	StageSubstringDeep,
	StageSubstringIni,
	StageDeepTokens,
	StageIniTokens,
	StageTokenOverlap,
	StageDirectName,
}

// StageTuning is the accept threshold and margin of one stage in Full mode.
type StageTuning struct {
	Threshold float64
	Margin    float64
}

var defaultStageTuning = map[string]StageTuning{
	StageHash:          {Threshold: 9, Margin: 4},
	StageAlias:         {Threshold: 7, Margin: 3},
	StageSubstringDeep: {Threshold: 7.5, Margin: 3},
	StageSubstringIni:  {Threshold: 7.5, Margin: 3},
	StageDeepTokens:    {Threshold: 8, Margin: 3},
	StageIniTokens:     {Threshold: 8.5, Margin: 3},
	StageTokenOverlap:  {Threshold: 9, Margin: 3.5},
	StageDirectName:    {Threshold: 9.5, Margin: 3.5},
}

// Policy centralizes matcher calibration. The numbers are empirical and
// meant to be re-tuned against a corpus of known folders.
type Policy struct {
	TopK               int
	ReviewMinScore     float64
	QuickSeedCap       int
	FullSeedCap        int
	MinPool            int
	AmbiguityGap       float64
	PackMinEntities    int
	ForeignWeight      float64
	MaxReasons         int
	QuickThresholdBump float64
	DisableRescue      bool
	// Stages overrides per-stage tuning; zero fields keep the default.
	Stages map[string]StageTuning
}

// DefaultPolicy returns the built-in calibration.
func DefaultPolicy() Policy {
	return Policy{
		TopK:               5,
		ReviewMinScore:     2.5,
		QuickSeedCap:       64,
		FullSeedCap:        128,
		MinPool:            8,
		AmbiguityGap:       1.0,
		PackMinEntities:    3,
		ForeignWeight:      0.5,
		MaxReasons:         12,
		QuickThresholdBump: 1.0,
	}
}

// PolicyFromConfig maps the [matcher] configuration section onto a Policy.
func PolicyFromConfig(c config.Matcher) Policy {
	p := Policy{
		TopK:               c.TopK,
		ReviewMinScore:     c.ReviewMinScore,
		QuickSeedCap:       c.QuickSeedCap,
		FullSeedCap:        c.FullSeedCap,
		MinPool:            c.MinPool,
		AmbiguityGap:       c.AmbiguityGap,
		PackMinEntities:    c.PackMinEntities,
		ForeignWeight:      c.ForeignWeight,
		MaxReasons:         c.MaxReasons,
		QuickThresholdBump: c.QuickThresholdBump,
		DisableRescue:      !c.Rescue,
	}
	if len(c.Stages) > 0 {
		p.Stages = make(map[string]StageTuning, len(c.Stages))
		for id, t := range c.Stages {
			p.Stages[strings.ToLower(id)] = StageTuning{Threshold: t.Threshold, Margin: t.Margin}
		}
	}
	return p.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.TopK <= 0 {
		p.TopK = d.TopK
	}
	if p.ReviewMinScore <= 0 {
		p.ReviewMinScore = d.ReviewMinScore
	}
	if p.QuickSeedCap <= 0 {
		p.QuickSeedCap = d.QuickSeedCap
	}
	if p.FullSeedCap <= 0 {
		p.FullSeedCap = d.FullSeedCap
	}
	if p.MinPool <= 0 {
		p.MinPool = d.MinPool
	}
	if p.AmbiguityGap <= 0 {
		p.AmbiguityGap = d.AmbiguityGap
	}
	if p.PackMinEntities <= 1 {
		p.PackMinEntities = d.PackMinEntities
	}
	if p.ForeignWeight <= 0 || p.ForeignWeight > 1 {
		p.ForeignWeight = d.ForeignWeight
	}
	if p.MaxReasons <= 0 {
		p.MaxReasons = d.MaxReasons
	}
	if p.QuickThresholdBump < 0 {
		p.QuickThresholdBump = d.QuickThresholdBump
	}

	tuned := make(map[string]StageTuning, len(defaultStageTuning))
	for id, base := range defaultStageTuning {
		if override, ok := p.Stages[id]; ok {
			if override.Threshold > 0 {
				base.Threshold = override.Threshold
			}
			if override.Margin > 0 {
				base.Margin = override.Margin
			}
		}
		tuned[id] = base
	}
	p.Stages = tuned
	return p
}

// Tuning returns the effective tuning of stage for quick or full mode.
func (p Policy) Tuning(stage string, quick bool) StageTuning {
	n := p.normalized()
	t := n.Stages[strings.ToLower(stage)]
	if quick {
		t.Threshold += n.QuickThresholdBump
	}
	return t
}
