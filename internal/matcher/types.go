package matcher

import (
	"fmt"
	"strings"

	"modmatch/internal/catalog"
	"modmatch/internal/signals"
)

// Status is the terminal outcome of a match run.
type Status string

const (
	StatusAutoMatched Status = "auto_matched"
	StatusNeedsReview Status = "needs_review"
	StatusNoMatch     Status = "no_match"
)

// Confidence is an ordered confidence tier.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// MarshalText encodes the tier name.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a tier name.
func (c *Confidence) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none", "":
		*c = ConfidenceNone
	case "low":
		*c = ConfidenceLow
	case "medium":
		*c = ConfidenceMedium
	case "high":
		*c = ConfidenceHigh
	default:
		return fmt.Errorf("unknown confidence %q", text)
	}
	return nil
}

func maxConfidence(a, b Confidence) Confidence {
	if b > a {
		return b
	}
	return a
}

// Candidate is an immutable snapshot of one scored entry.
type Candidate struct {
	EntryID    catalog.EntryID `json:"entry_id" yaml:"entry_id"`
	Name       string          `json:"name" yaml:"name"`
	ObjectType string          `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	Score      float64         `json:"score" yaml:"score"`
	Confidence Confidence      `json:"confidence" yaml:"confidence"`
	Primary    bool            `json:"primary" yaml:"primary"`
	Reasons    []Reason        `json:"-" yaml:"-"`
}

// StageTrace records what one stage did, for explainability.
type StageTrace struct {
	Stage     string  `json:"stage" yaml:"stage"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Touched   int     `json:"touched" yaml:"touched"`
	Leader    string  `json:"leader,omitempty" yaml:"leader,omitempty"`
	Score     float64 `json:"score" yaml:"score"`
	Outcome   string  `json:"outcome" yaml:"outcome"`
}

// Result is the outcome of a match run. Best is nil for StatusNoMatch and
// TopK is then empty.
type Result struct {
	Status  Status                `json:"status" yaml:"status"`
	Best    *Candidate            `json:"best,omitempty" yaml:"best,omitempty"`
	TopK    []Candidate           `json:"top_k" yaml:"top_k"`
	Signals signals.FolderSignals `json:"signals" yaml:"signals"`
	// Stage names what decided the result: a scoring stage, "finalize",
	// "rerank" or "rescue".
	Stage string       `json:"stage" yaml:"stage"`
	Trace []StageTrace `json:"trace" yaml:"trace"`
}

// TypeHint narrows matching to one object type. A strict hint drops other
// types from the pool; a loose one down-weights them and blocks their
// automatic acceptance.
type TypeHint struct {
	Type   string
	Strict bool
}

func (h TypeHint) normalized() TypeHint {
	h.Type = strings.ToLower(strings.TrimSpace(h.Type))
	return h
}

func (h TypeHint) foreign(objectType string) bool {
	return h.Type != "" && objectType != h.Type
}
