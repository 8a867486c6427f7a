package matcher

import (
	"slices"
	"strings"

	"modmatch/internal/textutil"
)

// Outcomes recorded in StageTrace.
const (
	outcomeEmpty          = "empty"
	outcomeBelowThreshold = "below_threshold"
	outcomeNoPrimary      = "no_primary_evidence"
	outcomeForeign        = "foreign_type"
	outcomeMargin         = "insufficient_margin"
	outcomeAccepted       = "accepted"
)

// Ambiguity reasons.
const (
	ambiguityCloseRunnerUp = "close_runner_up"
	ambiguityVariants      = "same_base_variants"
	ambiguityPack          = "multi_entity_pack"
	ambiguitySharedToken   = "shared_rare_token"
)

// variantPlausibleRatio is how close to the leader a same-base variant must
// score to count as a plausible alternative.
const variantPlausibleRatio = 0.85

type verdict struct {
	status  Status // empty while scoring continues
	outcome string
	ranked  []Candidate
}

// tryAccept decides, after stage s, whether the run can stop.
func (r *run) tryAccept(s stage) verdict {
	ranked := rank(r.states)
	if len(ranked) == 0 {
		return verdict{outcome: outcomeEmpty}
	}
	best := ranked[0]
	if best.Score < s.threshold {
		return verdict{outcome: outcomeBelowThreshold, ranked: ranked}
	}
	if !best.Primary {
		return verdict{outcome: outcomeNoPrimary, ranked: ranked}
	}
	if r.states[best.EntryID].foreign {
		return verdict{outcome: outcomeForeign, ranked: ranked}
	}
	if reason := r.ambiguity(ranked); reason != "" {
		return verdict{status: StatusNeedsReview, outcome: reason, ranked: ranked}
	}
	var second float64
	if len(ranked) > 1 {
		second = ranked[1].Score
	}
	if best.Score-second < s.margin {
		return verdict{outcome: outcomeMargin, ranked: ranked}
	}
	ranked[0].Confidence = maxConfidence(best.Confidence, s.floor)
	return verdict{status: StatusAutoMatched, outcome: outcomeAccepted, ranked: ranked}
}

// ambiguity returns why the leader cannot be trusted, or "".
func (r *run) ambiguity(ranked []Candidate) string {
	best := ranked[0]
	if len(ranked) > 1 {
		runner := ranked[1]
		if runner.Primary && best.Score-runner.Score < r.policy.AmbiguityGap {
			return ambiguityCloseRunnerUp
		}
	}
	base := baseName(best.Name)
	for _, c := range ranked[1:] {
		if c.Score < best.Score*variantPlausibleRatio {
			break
		}
		if baseName(c.Name) == base {
			return ambiguityVariants
		}
	}
	if r.packSignature(ranked) {
		return ambiguityPack
	}
	return ""
}

// packSignature reports whether enough distinct base entities carry primary
// evidence to look like a multi-character pack.
func (r *run) packSignature(ranked []Candidate) bool {
	bases := make(map[string]struct{})
	for _, c := range ranked {
		if !c.Primary {
			continue
		}
		bases[baseName(c.Name)] = struct{}{}
		if len(bases) >= r.policy.PackMinEntities {
			return true
		}
	}
	return false
}

// baseName strips a parenthesized or bracketed variant suffix, so
// "Keqing (Opulent Splendor)" and "Keqing" share a base.
func baseName(name string) string {
	if i := strings.IndexAny(name, "(["); i > 0 {
		name = name[:i]
	}
	return textutil.Condense(name)
}

// finalize resolves a run no stage accepted.
func (r *run) finalize() verdict {
	ranked := rank(r.states)
	if len(ranked) == 0 {
		return verdict{status: StatusNoMatch, outcome: outcomeEmpty}
	}
	if r.packSignature(ranked) {
		return verdict{status: StatusNeedsReview, outcome: ambiguityPack, ranked: ranked}
	}
	if ranked[0].Score >= r.policy.ReviewMinScore {
		return verdict{status: StatusNeedsReview, outcome: outcomeBelowThreshold, ranked: ranked}
	}
	if r.sharedRareToken(ranked) {
		return verdict{status: StatusNeedsReview, outcome: ambiguitySharedToken, ranked: ranked}
	}
	return verdict{status: StatusNoMatch, outcome: outcomeBelowThreshold}
}

// sharedRareToken reports whether an observed token rare enough for all of
// its entries to fit in the top-K is shared by at least two scored
// candidates. Such a folder names a group, not a single entity, and stays
// reviewable however low the summed scores are.
func (r *run) sharedRareToken(ranked []Candidate) bool {
	for _, token := range r.ev.all {
		df := r.cat.TokenDF(token)
		if df < 2 || df > r.policy.TopK {
			continue
		}
		sharers := 0
		for _, c := range ranked {
			if slices.Contains(r.cat.EntryTokens(c.EntryID), token) {
				sharers++
			}
		}
		if sharers >= 2 {
			return true
		}
	}
	return false
}
