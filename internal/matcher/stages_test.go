package matcher

import (
	"testing"

	"modmatch/internal/catalog"
	"modmatch/internal/signals"
	"modmatch/internal/testsupport"
)

const huTaoRichIni = `[TextureOverrideHuTaoBody]
hash = 0xA1B2C3D4
filename = Characters/HuTao/HuTaoBodyDiffuse.dds
[ResourcePlumBlossom]
`

func TestScoresNeverDecreaseAcrossStages(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	files := map[string]string{
		"HuTao.ini":            huTaoRichIni,
		"HuTaoBodyDiffuse.dds": "",
		"Xiangling.dds":        "",
		"Kamisato/Ayaka.dds":   "",
	}
	sig := folderSignals(t, "HuTao Pyro Kamisato", files, signals.ModeFull)
	r := newRun(cat, sig, DefaultPolicy(), TypeHint{})
	r.buildPool()
	if len(r.pool) < 3 {
		t.Fatalf("pool too small: %v", r.pool)
	}

	prev := map[catalog.EntryID]float64{}
	for _, s := range buildStages(r.policy, r.quick) {
		r.applyStage(s)
		for id, st := range r.states {
			if st.score < prev[id] {
				t.Fatalf("stage %s lowered %s from %.3f to %.3f", s.id, st.name, prev[id], st.score)
			}
			prev[id] = st.score
		}
	}

	// Re-applying any stage is a no-op.
	for _, s := range buildStages(r.policy, r.quick) {
		if touched := r.applyStage(s); touched != 0 {
			t.Fatalf("stage %s touched %d candidates on re-apply", s.id, touched)
		}
	}
	for id, st := range r.states {
		if st.score != prev[id] {
			t.Fatalf("re-apply changed %s score", st.name)
		}
	}
}

func TestScoreStateApply(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	st := newScoreState(cat, testsupport.HuTao, 2)

	if !st.apply(StageHash, contribution{delta: 10, confidence: ConfidenceHigh, reasons: []Reason{HashOverlap{Hashes: []string{"a1b2c3d4"}, Unique: 1}}}) {
		t.Fatal("first apply should change state")
	}
	if st.apply(StageHash, contribution{delta: 10}) {
		t.Fatal("second apply of the same stage must be a no-op")
	}
	st.apply(StageTokenOverlap, contribution{delta: -5, confidence: ConfidenceLow, reasons: []Reason{TokenOverlap{}}})
	st.apply(StageDirectName, contribution{delta: 1, reasons: []Reason{DirectNameSupport{}}})

	if st.score != 11 {
		t.Fatalf("score = %f, want 11", st.score)
	}
	if st.confidence != ConfidenceHigh {
		t.Fatalf("confidence lowered to %s", st.confidence)
	}
	if len(st.reasons) != 2 {
		t.Fatalf("reasons should be capped at 2, got %d", len(st.reasons))
	}
	if !st.primary {
		t.Fatal("hash overlap is primary evidence")
	}
}

func TestScoreHashWeighsUniqueAboveShared(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	ev := newEvidence(cat, signals.FolderSignals{Hashes: []string{"55555555", "a1b2c3d4"}})

	unique := scoreHash(cat, ev, testsupport.HuTao)
	shared := scoreHash(cat, ev, testsupport.Nahida)
	if unique.delta != uniqueHashScore || unique.confidence != ConfidenceHigh {
		t.Fatalf("unique = %+v", unique)
	}
	if shared.delta != sharedHashScore/2 || shared.confidence != ConfidenceMedium {
		t.Fatalf("shared = %+v", shared)
	}
	if got := scoreHash(cat, ev, testsupport.Xiangling); !got.empty() {
		t.Fatalf("entry without hashes scored %+v", got)
	}
}

func TestScoreAliasRequiresFullCoverage(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	partial := newEvidence(cat, signals.FolderSignals{NameTokens: []string{"plum"}})
	if got := scoreAlias(cat, partial, testsupport.HuTao); !got.empty() {
		t.Fatalf("partial alias coverage scored %+v", got)
	}
	full := newEvidence(cat, signals.FolderSignals{DeepTokens: []string{"blossom", "plum"}})
	got := scoreAlias(cat, full, testsupport.HuTao)
	if got.delta != aliasBaseScore+2 {
		t.Fatalf("delta = %f", got.delta)
	}
	hit, ok := got.reasons[0].(AliasHit)
	if !ok || hit.Alias != "Plum Blossom" || hit.Variant != "Cherries Snow-Laden" {
		t.Fatalf("reason = %+v", got.reasons)
	}
}

func TestScoreSubstringKinds(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	tests := []struct {
		name   string
		needle string
		id     catalog.EntryID
		match  string
		delta  float64
	}{
		{"exact", "Raiden_Shogun", testsupport.RaidenShogun, SubstringExact, deepSubstring.exact},
		{"contains", "RaidenShogunBody", testsupport.RaidenShogun, SubstringContains, deepSubstring.contains},
		{"alias", "BeelzebulAlt", testsupport.RaidenShogun, SubstringAlias, deepSubstring.alias},
		{"tag", "ElectroGlow", testsupport.RaidenShogun, SubstringTag, deepSubstring.alias * 0.8},
		{"embedded name", "xxhutaoxx", testsupport.HuTao, SubstringContains, deepSubstring.contains},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := newEvidence(cat, signals.FolderSignals{DeepStrings: []string{tt.needle}})
			got := scoreSubstringDeep(cat, ev, tt.id)
			if len(got.reasons) != 1 {
				t.Fatalf("reasons = %v", got.reasons)
			}
			hit := got.reasons[0].(SubstringHit)
			if hit.Match != tt.match || got.delta != tt.delta {
				t.Fatalf("hit = %+v delta = %f", hit, got.delta)
			}
		})
	}
}

func TestTagSubstringIsNotPrimary(t *testing.T) {
	if isPrimary(SubstringHit{Match: SubstringTag}) {
		t.Fatal("tag substring must not be primary")
	}
	if !isPrimary(SubstringHit{Match: SubstringContains}) {
		t.Fatal("name substring is primary")
	}
	if isPrimary(DeepTokenOverlap{Strong: false}) || !isPrimary(DeepTokenOverlap{Strong: true}) {
		t.Fatal("only strong deep overlap is primary")
	}
}
