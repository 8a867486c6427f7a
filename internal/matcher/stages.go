package matcher

import (
	"strings"

	"modmatch/internal/catalog"
	"modmatch/internal/textutil"
)

// stage is one scoring pass with its accept rule.
type stage struct {
	id        string
	threshold float64
	margin    float64
	floor     Confidence
	score     func(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution
}

// buildStages returns the stage list for a run in evaluation order.
func buildStages(p Policy, quick bool) []stage {
	scorers := map[string]struct {
		floor Confidence
		score func(*catalog.Catalog, *evidence, catalog.EntryID) contribution
	}{
		StageHash:          {ConfidenceHigh, scoreHash},
		StageAlias:         {ConfidenceHigh, scoreAlias},
		StageSubstringDeep: {ConfidenceMedium, scoreSubstringDeep},
		StageSubstringIni:  {ConfidenceMedium, scoreSubstringIni},
		StageDeepTokens:    {ConfidenceMedium, scoreDeepTokens},
		StageIniTokens:     {ConfidenceMedium, scoreIniTokens},
		StageTokenOverlap:  {ConfidenceMedium, scoreTokenOverlap},
		StageDirectName:    {ConfidenceMedium, scoreDirectName},
	}
	out := make([]stage, 0, len(StageOrder))
	for _, id := range StageOrder {
		s := scorers[id]
		t := p.Tuning(id, quick)
		out = append(out, stage{id: id, threshold: t.Threshold, margin: t.Margin, floor: s.floor, score: s.score})
	}
	return out
}

const (
	uniqueHashScore  = 10.0
	sharedHashScore  = 6.0
	maxHashScore     = 30.0
	aliasBaseScore   = 5.0
	maxAliasScore    = 8.0
	minSubstringLen  = 4
	deepRatioWeight  = 4.0
	deepTokenBonus   = 0.75
	iniRatioWeight   = 3.0
	iniTokenBonus    = 0.5
	strongDeepRatio  = 0.5
	jaccardWeight    = 3.0
	maxRarityBonus   = 3.0
	nameWordScore    = 0.75
	maxNameWordScore = 2.25
	exactNameScore   = 1.5
)

// scoreHash rewards hashes the entry declares. A hash unique to the entry is
// decisive; one shared by df entries contributes sharedHashScore/df.
func scoreHash(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	var (
		matched        []string
		unique, shared int
		delta          float64
	)
	for _, h := range cat.Hashes(id) {
		if !ev.hashSet.has(h) {
			continue
		}
		matched = append(matched, h)
		if df := cat.HashDF(h); df <= 1 {
			unique++
			delta += uniqueHashScore
		} else {
			shared++
			delta += sharedHashScore / float64(df)
		}
	}
	if len(matched) == 0 {
		return contribution{}
	}
	if delta > maxHashScore {
		delta = maxHashScore
	}
	conf := ConfidenceMedium
	if unique > 0 {
		conf = ConfidenceHigh
	}
	return contribution{
		delta:      delta,
		confidence: conf,
		reasons:    []Reason{HashOverlap{Hashes: matched, Unique: unique, Shared: shared}},
	}
}

// scoreAlias rewards the best alias whose tokens the folder fully covers.
// Longer aliases are more specific and score higher.
func scoreAlias(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	var (
		best  catalog.Alias
		score float64
	)
	for _, alias := range cat.Aliases(id) {
		if len(alias.Tokens) == 0 || len(ev.allSet.intersect(alias.Tokens)) != len(alias.Tokens) {
			continue
		}
		s := aliasBaseScore + float64(len(alias.Tokens))
		if s > maxAliasScore {
			s = maxAliasScore
		}
		if s > score {
			best, score = alias, s
		}
	}
	if score == 0 {
		return contribution{}
	}
	return contribution{
		delta:      score,
		confidence: ConfidenceHigh,
		reasons:    []Reason{AliasHit{Alias: best.Text, Variant: best.Variant}},
	}
}

type substringWeights struct {
	source   string
	exact    float64
	contains float64
	alias    float64
}

var (
	deepSubstring = substringWeights{source: "deep", exact: 8, contains: 5, alias: 2.5}
	iniSubstring  = substringWeights{source: "ini", exact: 6, contains: 4, alias: 2}
)

func scoreSubstringDeep(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	return scoreSubstring(cat, ev.deepNeedles, id, deepSubstring)
}

func scoreSubstringIni(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	return scoreSubstring(cat, ev.iniNeedles, id, iniSubstring)
}

// scoreSubstring keeps the single strongest hit across needles: the entry
// name equal to a needle, then the name inside a needle, then an alias or
// tag inside a needle. Names and aliases shorter than four characters only
// match exactly.
func scoreSubstring(cat *catalog.Catalog, needles []needle, id catalog.EntryID, w substringWeights) contribution {
	if len(needles) == 0 {
		return contribution{}
	}
	name := cat.CondensedName(id)
	var (
		best  SubstringHit
		score float64
		conf  Confidence
	)
	consider := func(s float64, c Confidence, hit SubstringHit) {
		if s > score {
			score, conf, best = s, c, hit
		}
	}
	for _, n := range needles {
		switch {
		case n.condensed == name:
			consider(w.exact, ConfidenceHigh, SubstringHit{Source: w.source, Match: SubstringExact, Needle: n.raw, Target: cat.Name(id)})
		case len(name) >= minSubstringLen && strings.Contains(n.condensed, name):
			consider(w.contains, ConfidenceMedium, SubstringHit{Source: w.source, Match: SubstringContains, Needle: n.raw, Target: cat.Name(id)})
		}
		if score >= w.contains {
			continue
		}
		for _, alias := range cat.Aliases(id) {
			if alias.Condensed == n.condensed || (len(alias.Condensed) >= minSubstringLen && strings.Contains(n.condensed, alias.Condensed)) {
				consider(w.alias, ConfidenceLow, SubstringHit{Source: w.source, Match: SubstringAlias, Needle: n.raw, Target: alias.Text})
				break
			}
		}
		if score >= w.alias {
			continue
		}
		for _, tag := range cat.CondensedTags(id) {
			if len(tag) >= minSubstringLen && strings.Contains(n.condensed, tag) {
				// Tags are weaker than aliases and never primary.
				consider(w.alias*0.8, ConfidenceLow, SubstringHit{Source: w.source, Match: SubstringTag, Needle: n.raw, Target: tag})
				break
			}
		}
	}
	if score == 0 {
		return contribution{}
	}
	return contribution{delta: score, confidence: conf, reasons: []Reason{best}}
}

// scoreDeepTokens rewards entry tokens seen in subfolder and file names.
func scoreDeepTokens(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	entryTokens := cat.EntryTokens(id)
	matched := ev.deepSet.intersect(entryTokens)
	if len(matched) == 0 {
		return contribution{}
	}
	ratio := float64(len(matched)) / float64(len(entryTokens))
	strong := ratio >= strongDeepRatio
	conf := ConfidenceLow
	if strong {
		conf = ConfidenceMedium
	}
	return contribution{
		delta:      ratio*deepRatioWeight + deepTokenBonus*ev.raritySum(cat, matched),
		confidence: conf,
		reasons:    []Reason{DeepTokenOverlap{Matched: matched, Ratio: roundScore(ratio), Strong: strong}},
	}
}

// scoreIniTokens rewards entry tokens seen in INI sections, keys and paths.
func scoreIniTokens(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	entryTokens := cat.EntryTokens(id)
	matched := ev.iniSet.intersect(entryTokens)
	if len(matched) == 0 {
		return contribution{}
	}
	ratio := float64(len(matched)) / float64(len(entryTokens))
	return contribution{
		delta:      ratio*iniRatioWeight + iniTokenBonus*ev.raritySum(cat, matched),
		confidence: ConfidenceLow,
		reasons:    []Reason{IniTokenOverlap{Matched: matched, Ratio: roundScore(ratio)}},
	}
}

// scoreTokenOverlap is the catch-all: Jaccard similarity of every folder
// token against the entry tokens plus a rarity bonus for what they share.
func scoreTokenOverlap(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	entryTokens := cat.EntryTokens(id)
	matched := ev.allSet.intersect(entryTokens)
	if len(matched) == 0 {
		return contribution{}
	}
	jaccard := textutil.Jaccard(ev.all, entryTokens)
	bonus := ev.raritySum(cat, matched)
	if bonus > maxRarityBonus {
		bonus = maxRarityBonus
	}
	return contribution{
		delta:      jaccard*jaccardWeight + bonus,
		confidence: ConfidenceLow,
		reasons:    []Reason{TokenOverlap{Matched: matched, Jaccard: roundScore(jaccard)}},
	}
}

// scoreDirectName gives a small bonus per name or tag word present in the
// folder tokens, plus a fixed bonus when the whole folder name equals the
// entry name or one of its aliases.
func scoreDirectName(cat *catalog.Catalog, ev *evidence, id catalog.EntryID) contribution {
	entry := cat.Entry(id)
	words := textutil.Tokenize(entry.Name)
	for _, tag := range entry.Tags {
		words = append(words, textutil.Tokenize(tag)...)
	}
	matched := ev.allSet.intersect(textutil.SortedUnique(words))

	exact := ev.root != "" && ev.root == cat.CondensedName(id)
	if !exact && ev.root != "" {
		for _, alias := range cat.Aliases(id) {
			if alias.Condensed == ev.root {
				exact = true
				break
			}
		}
	}
	if len(matched) == 0 && !exact {
		return contribution{}
	}
	delta := nameWordScore * float64(len(matched))
	if delta > maxNameWordScore {
		delta = maxNameWordScore
	}
	if exact {
		delta += exactNameScore
	}
	return contribution{
		delta:      delta,
		confidence: ConfidenceLow,
		reasons:    []Reason{DirectNameSupport{Words: matched, Exact: exact}},
	}
}
