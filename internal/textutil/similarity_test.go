package textutil

import (
	"math"
	"testing"
)

func fingerprint(text string) *Fingerprint {
	return FromTokens(Tokenize(text))
}

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, fingerprint("raiden shogun"), 0},
		{"b nil", fingerprint("raiden shogun"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "Kamisato Ayaka Springbloom Missive"
	got := CosineSimilarity(fingerprint(text), fingerprint(text))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := fingerprint("raiden shogun")
	b := fingerprint("hu tao")
	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("CosineSimilarity(disjoint) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlapIsSymmetric(t *testing.T) {
	a := fingerprint("kamisato ayaka dress")
	b := fingerprint("kamisato ayato")

	ab := CosineSimilarity(a, b)
	ba := CosineSimilarity(b, a)
	if ab <= 0 || ab >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want between 0 and 1", ab)
	}
	if ab != ba {
		t.Errorf("CosineSimilarity not symmetric: (%v, %v)", ab, ba)
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	a := &Fingerprint{terms: map[string]float64{}, norm: 0}
	if got := CosineSimilarity(a, fingerprint("nahida")); got != 0 {
		t.Errorf("CosineSimilarity(zero norm) = %v, want 0", got)
	}
}

func TestFromTokensNorm(t *testing.T) {
	// keqing:2, opulent:1 -> sqrt(5)
	fp := fingerprint("Keqing keqing opulent")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 1e-4 {
		t.Errorf("norm = %v, want %v", fp.norm, math.Sqrt(5))
	}
	if got := fp.Terms(); len(got) != 2 || got[0] != "keqing" || got[1] != "opulent" {
		t.Errorf("Terms() = %v, want [keqing opulent]", got)
	}
}

func TestFromTokensOnlyNoise(t *testing.T) {
	if fp := fingerprint("mod v2 fix (copy)"); fp != nil {
		t.Errorf("expected nil fingerprint, got %v", fp.Terms())
	}
	var nilFP *Fingerprint
	if nilFP.Terms() != nil {
		t.Error("nil fingerprint should have no terms")
	}
}

func TestWithIDFFavorsRareTerms(t *testing.T) {
	docs := []string{"ayaka kamisato", "ayato kamisato", "raiden shogun"}
	df := make(map[string]int)
	for _, doc := range docs {
		for _, term := range fingerprint(doc).Terms() {
			df[term]++
		}
	}
	idf := make(map[string]float64, len(df))
	for term, n := range df {
		idf[term] = SmoothIDF(len(docs), n)
	}
	if idf["ayaka"] <= idf["kamisato"] {
		t.Fatalf("idf(ayaka)=%v should exceed idf(kamisato)=%v", idf["ayaka"], idf["kamisato"])
	}

	query := fingerprint("ayaka kamisato").WithIDF(idf)
	ayaka := fingerprint("kamisato ayaka").WithIDF(idf)
	ayato := fingerprint("kamisato ayato").WithIDF(idf)
	if CosineSimilarity(query, ayaka) <= CosineSimilarity(query, ayato) {
		t.Error("exact match should outscore sibling sharing only the common term")
	}
}

func TestSmoothIDF(t *testing.T) {
	if got := SmoothIDF(10, 10); math.Abs(got-1) > 1e-9 {
		t.Errorf("SmoothIDF(10,10) = %v, want 1", got)
	}
	if SmoothIDF(10, 1) <= SmoothIDF(10, 5) {
		t.Error("rarer term should weigh more")
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"empty", nil, nil, 0},
		{"identical", []string{"ayaka", "kamisato"}, []string{"ayaka", "kamisato"}, 1},
		{"half", []string{"ayaka", "kamisato"}, []string{"ayato", "kamisato"}, 1.0 / 3.0},
		{"disjoint", []string{"hu", "tao"}, []string{"nahida"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}
