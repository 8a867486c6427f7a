package textutil

import (
	"math"
	"sort"
)

// Fingerprint is a weighted term vector used for lexical similarity between
// folder signals and catalog entries.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// FromTokens builds a term-frequency fingerprint from already tokenized input.
// Returns nil for an empty slice.
func FromTokens(tokens []string) *Fingerprint {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		counts[token]++
	}
	return newFingerprint(counts)
}

func newFingerprint(weights map[string]float64) *Fingerprint {
	if len(weights) == 0 {
		return nil
	}
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	return &Fingerprint{terms: weights, norm: math.Sqrt(sum)}
}

// Terms returns the distinct terms in sorted order.
func (f *Fingerprint) Terms() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.terms))
	for term := range f.terms {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// WithIDF returns a copy weighted by idf. Terms absent from idf keep their
// raw frequency; terms whose weight drops to zero are removed.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.terms))
	for term, count := range f.terms {
		w := count
		if v, ok := idf[term]; ok {
			w *= v
		}
		if w == 0 {
			continue
		}
		weighted[term] = w
	}
	return newFingerprint(weighted)
}

// SmoothIDF returns ln((n+1)/(df+1)) + 1. Rare terms weigh more; a term in
// every document still weighs 1.
func SmoothIDF(n, df int) float64 {
	return math.Log(float64(n+1)/float64(df+1)) + 1
}
