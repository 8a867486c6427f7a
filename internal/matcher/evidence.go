package matcher

import (
	"modmatch/internal/catalog"
	"modmatch/internal/signals"
	"modmatch/internal/textutil"
)

type tokenSet map[string]struct{}

func newTokenSet(values ...[]string) tokenSet {
	set := make(tokenSet)
	for _, list := range values {
		for _, v := range list {
			set[v] = struct{}{}
		}
	}
	return set
}

func (s tokenSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

// intersect returns the members of sorted that are in s, keeping order.
func (s tokenSet) intersect(sorted []string) []string {
	var out []string
	for _, v := range sorted {
		if s.has(v) {
			out = append(out, v)
		}
	}
	return out
}

type needle struct {
	raw       string
	condensed string
}

func condenseAll(values []string) []needle {
	out := make([]needle, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		c := textutil.Condense(v)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, needle{raw: v, condensed: c})
	}
	return out
}

// evidence is the read-only view of a folder's signals used by every stage.
type evidence struct {
	signals     signals.FolderSignals
	all         []string
	allSet      tokenSet
	deepSet     tokenSet
	iniSet      tokenSet
	hashSet     tokenSet
	deepNeedles []needle
	iniNeedles  []needle
	root        string
	maxIDF      float64
}

func newEvidence(cat *catalog.Catalog, sig signals.FolderSignals) *evidence {
	all := sig.AllTokens()
	return &evidence{
		signals:     sig,
		all:         all,
		allSet:      newTokenSet(all),
		deepSet:     newTokenSet(sig.DeepTokens),
		iniSet:      newTokenSet(sig.IniTokens),
		hashSet:     newTokenSet(sig.Hashes),
		deepNeedles: condenseAll(sig.DeepStrings),
		iniNeedles:  condenseAll(sig.IniStrings),
		root:        textutil.Condense(sig.FolderName),
		maxIDF:      textutil.SmoothIDF(cat.Len(), 1),
	}
}

// rarity scales a token's IDF into (0, 1], where 1 is a token held by a
// single entry.
func (e *evidence) rarity(cat *catalog.Catalog, token string) float64 {
	if e.maxIDF <= 0 {
		return 0
	}
	r := cat.TokenIDF(token) / e.maxIDF
	if r > 1 {
		return 1
	}
	return r
}

func (e *evidence) raritySum(cat *catalog.Catalog, tokens []string) float64 {
	var sum float64
	for _, t := range tokens {
		sum += e.rarity(cat, t)
	}
	return sum
}
