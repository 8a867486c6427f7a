package matcher

import (
	"strings"

	"modmatch/internal/catalog"
	"modmatch/internal/signals"
	"modmatch/internal/textutil"
)

const (
	rescueExactScore    = 3.0
	rescueContainsScore = 2.0
	rescueAliasScore    = 1.5
)

// rescue compares only the condensed root folder name against every
// catalog name and alias. Hits always need review.
func rescue(cat *catalog.Catalog, sig signals.FolderSignals, hint TypeHint, p Policy) (Result, bool) {
	root := textutil.Condense(sig.FolderName)
	if len(root) < minSubstringLen {
		return Result{}, false
	}
	var found []Candidate
	for i := 0; i < cat.Len(); i++ {
		id := catalog.EntryID(i)
		if hint.Strict && hint.Type != "" && cat.ObjectType(id) != hint.Type {
			continue
		}
		score, reason := rescueEntry(cat, id, root)
		if score == 0 {
			continue
		}
		found = append(found, Candidate{
			EntryID:    id,
			Name:       cat.Name(id),
			ObjectType: cat.ObjectType(id),
			Score:      score,
			Confidence: ConfidenceLow,
			Reasons:    []Reason{reason},
		})
	}
	if len(found) == 0 {
		return Result{}, false
	}
	sortCandidates(found)
	top := topK(found, p.normalized().TopK)
	best := top[0]
	return Result{
		Status:  StatusNeedsReview,
		Best:    &best,
		TopK:    top,
		Signals: sig,
		Stage:   stageRescue,
		Trace: []StageTrace{{
			Stage:   stageRescue,
			Touched: len(found),
			Leader:  best.Name,
			Score:   best.Score,
			Outcome: "rescued",
		}},
	}, true
}

func rescueEntry(cat *catalog.Catalog, id catalog.EntryID, root string) (float64, Reason) {
	name := cat.CondensedName(id)
	if len(name) >= minSubstringLen {
		if root == name {
			return rescueExactScore, RootRescue{Match: SubstringExact, Target: cat.Name(id)}
		}
		if strings.Contains(root, name) {
			return rescueContainsScore, RootRescue{Match: SubstringContains, Target: cat.Name(id)}
		}
	}
	for _, alias := range cat.Aliases(id) {
		if len(alias.Condensed) >= minSubstringLen && strings.Contains(root, alias.Condensed) {
			return rescueAliasScore, RootRescue{Match: SubstringAlias, Target: alias.Text}
		}
	}
	return 0, nil
}
