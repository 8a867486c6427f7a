package matcher

import (
	"fmt"
	"strings"
)

// ReasonKind names a Reason variant.
type ReasonKind string

const (
	KindHashOverlap       ReasonKind = "hash_overlap"
	KindAliasHit          ReasonKind = "alias_hit"
	KindSubstringHit      ReasonKind = "substring_hit"
	KindDeepTokenOverlap  ReasonKind = "deep_token_overlap"
	KindIniTokenOverlap   ReasonKind = "ini_token_overlap"
	KindTokenOverlap      ReasonKind = "token_overlap"
	KindDirectNameSupport ReasonKind = "direct_name_support"
	KindForeignEvidence   ReasonKind = "foreign_evidence"
	KindRerankScore       ReasonKind = "rerank_score"
	KindRootRescue        ReasonKind = "root_rescue"
)

// Reason is one piece of evidence attached to a candidate. The set of
// implementations is closed; switch on the concrete type to handle each.
type Reason interface {
	Kind() ReasonKind
	String() string
	reason()
}

// HashOverlap cites content hashes shared with the entry.
type HashOverlap struct {
	Hashes []string
	Unique int
	Shared int
}

// AliasHit cites an alias whose tokens the folder fully covers.
type AliasHit struct {
	Alias   string
	Variant string
}

// Substring match kinds.
const (
	SubstringExact    = "exact"
	SubstringContains = "contains"
	SubstringAlias    = "alias"
	SubstringTag      = "tag"
)

// SubstringHit cites a folder string that equals or contains an entry name,
// alias or tag once condensed.
type SubstringHit struct {
	Source string // "deep" or "ini"
	Match  string
	Needle string
	Target string
}

// DeepTokenOverlap cites entry tokens found among subfolder and file names.
type DeepTokenOverlap struct {
	Matched []string
	Ratio   float64
	Strong  bool
}

// IniTokenOverlap cites entry tokens found in INI sections, keys and paths.
type IniTokenOverlap struct {
	Matched []string
	Ratio   float64
}

// TokenOverlap cites the overall token similarity.
type TokenOverlap struct {
	Matched []string
	Jaccard float64
}

// DirectNameSupport cites entry name words present in the folder tokens.
type DirectNameSupport struct {
	Words []string
	Exact bool
}

// ForeignEvidence marks a candidate outside the hinted object type.
type ForeignEvidence struct {
	ObjectType string
	Hint       string
}

// RerankScore cites the score an external re-rank provider assigned.
type RerankScore struct {
	Provider string
	Score    float64
}

// RootRescue cites a root folder name match found by the rescue pass.
type RootRescue struct {
	Match  string
	Target string
}

func (HashOverlap) Kind() ReasonKind       { return KindHashOverlap }
func (AliasHit) Kind() ReasonKind          { return KindAliasHit }
func (SubstringHit) Kind() ReasonKind      { return KindSubstringHit }
func (DeepTokenOverlap) Kind() ReasonKind  { return KindDeepTokenOverlap }
func (IniTokenOverlap) Kind() ReasonKind   { return KindIniTokenOverlap }
func (TokenOverlap) Kind() ReasonKind      { return KindTokenOverlap }
func (DirectNameSupport) Kind() ReasonKind { return KindDirectNameSupport }
func (ForeignEvidence) Kind() ReasonKind   { return KindForeignEvidence }
func (RerankScore) Kind() ReasonKind       { return KindRerankScore }
func (RootRescue) Kind() ReasonKind        { return KindRootRescue }

func (HashOverlap) reason()       {}
func (AliasHit) reason()          {}
func (SubstringHit) reason()      {}
func (DeepTokenOverlap) reason()  {}
func (IniTokenOverlap) reason()   {}
func (TokenOverlap) reason()      {}
func (DirectNameSupport) reason() {}
func (ForeignEvidence) reason()   {}
func (RerankScore) reason()       {}
func (RootRescue) reason()        {}

func (r HashOverlap) String() string {
	return fmt.Sprintf("hash overlap %s (%d unique, %d shared)", strings.Join(r.Hashes, ","), r.Unique, r.Shared)
}

func (r AliasHit) String() string {
	if r.Variant != "" && r.Variant != r.Alias {
		return fmt.Sprintf("alias %q of variant %q", r.Alias, r.Variant)
	}
	return fmt.Sprintf("alias %q", r.Alias)
}

func (r SubstringHit) String() string {
	return fmt.Sprintf("%s substring %s: %q ~ %q", r.Source, r.Match, r.Needle, r.Target)
}

func (r DeepTokenOverlap) String() string {
	label := "deep tokens"
	if r.Strong {
		label = "strong deep tokens"
	}
	return fmt.Sprintf("%s %s (%.2f)", label, strings.Join(r.Matched, ","), r.Ratio)
}

func (r IniTokenOverlap) String() string {
	return fmt.Sprintf("ini tokens %s (%.2f)", strings.Join(r.Matched, ","), r.Ratio)
}

func (r TokenOverlap) String() string {
	return fmt.Sprintf("token overlap %s (jaccard %.2f)", strings.Join(r.Matched, ","), r.Jaccard)
}

func (r DirectNameSupport) String() string {
	if r.Exact {
		return fmt.Sprintf("folder name equals entry name (%s)", strings.Join(r.Words, ","))
	}
	return fmt.Sprintf("name words %s", strings.Join(r.Words, ","))
}

func (r ForeignEvidence) String() string {
	return fmt.Sprintf("object type %q outside hint %q", r.ObjectType, r.Hint)
}

func (r RerankScore) String() string {
	return fmt.Sprintf("re-rank %s %.2f", r.Provider, r.Score)
}

func (r RootRescue) String() string {
	return fmt.Sprintf("root folder name %s %q", r.Match, r.Target)
}

// isPrimary reports whether r alone can justify acceptance.
func isPrimary(r Reason) bool {
	switch v := r.(type) {
	case HashOverlap, AliasHit:
		return true
	case SubstringHit:
		return v.Match != SubstringTag
	case DeepTokenOverlap:
		return v.Strong
	case IniTokenOverlap, TokenOverlap, DirectNameSupport, ForeignEvidence, RerankScore, RootRescue:
		return false
	default:
		return false
	}
}

// ReasonRecord is the serializable form of a Reason.
type ReasonRecord struct {
	Kind    ReasonKind `json:"kind" yaml:"kind"`
	Detail  string     `json:"detail" yaml:"detail"`
	Primary bool       `json:"primary" yaml:"primary"`
}

// Explain converts reasons into records, preserving order.
func Explain(reasons []Reason) []ReasonRecord {
	out := make([]ReasonRecord, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, ReasonRecord{Kind: r.Kind(), Detail: r.String(), Primary: isPrimary(r)})
	}
	return out
}
