package matcher

import (
	"sort"

	"modmatch/internal/catalog"
)

// contribution is what one stage adds to one candidate.
type contribution struct {
	delta      float64
	confidence Confidence
	reasons    []Reason
}

func (c contribution) empty() bool {
	return c.delta <= 0 && len(c.reasons) == 0
}

// ScoreState is the running evidence for one pooled entry during a run.
type ScoreState struct {
	id         catalog.EntryID
	name       string
	objectType string
	score      float64
	confidence Confidence
	reasons    []Reason
	primary    bool
	foreign    bool
	applied    map[string]struct{}
	maxReasons int
}

func newScoreState(cat *catalog.Catalog, id catalog.EntryID, maxReasons int) *ScoreState {
	return &ScoreState{
		id:         id,
		name:       cat.Name(id),
		objectType: cat.ObjectType(id),
		applied:    make(map[string]struct{}, len(StageOrder)),
		maxReasons: maxReasons,
	}
}

// Score returns the running score.
func (s *ScoreState) Score() float64 { return s.score }

// apply adds a stage contribution. A stage contributes at most once, so
// re-applying it is a no-op; negative deltas are ignored so scores never
// decrease. It reports whether anything changed.
func (s *ScoreState) apply(stage string, c contribution) bool {
	if _, done := s.applied[stage]; done {
		return false
	}
	s.applied[stage] = struct{}{}
	if c.empty() {
		return false
	}
	if c.delta > 0 {
		s.score += c.delta
	}
	s.confidence = maxConfidence(s.confidence, c.confidence)
	for _, r := range c.reasons {
		if isPrimary(r) {
			s.primary = true
		}
		if _, ok := r.(ForeignEvidence); ok {
			s.foreign = true
		}
		s.addReason(r)
	}
	return true
}

func (s *ScoreState) addReason(r Reason) {
	if len(s.reasons) >= s.maxReasons {
		return
	}
	s.reasons = append(s.reasons, r)
}

func (s *ScoreState) snapshot() Candidate {
	return Candidate{
		EntryID:    s.id,
		Name:       s.name,
		ObjectType: s.objectType,
		Score:      roundScore(s.score),
		Confidence: s.confidence,
		Primary:    s.primary,
		Reasons:    append([]Reason(nil), s.reasons...),
	}
}

// roundScore trims float noise so equal evidence compares equal regardless
// of summation order.
func roundScore(v float64) float64 {
	const scale = 1e6
	if v < 0 {
		return -float64(int64(-v*scale+0.5)) / scale
	}
	return float64(int64(v*scale+0.5)) / scale
}

// less orders candidates by score descending, then name, then entry id.
func less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.EntryID < b.EntryID
}

// rank snapshots every state with a positive score in canonical order.
func rank(states map[catalog.EntryID]*ScoreState) []Candidate {
	out := make([]Candidate, 0, len(states))
	for _, st := range states {
		if st.score <= 0 {
			continue
		}
		out = append(out, st.snapshot())
	}
	sortCandidates(out)
	return out
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool { return less(c[i], c[j]) })
}

func topK(ranked []Candidate, k int) []Candidate {
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return append([]Candidate(nil), ranked...)
}
