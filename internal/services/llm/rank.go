package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CandidateRankingPrompt instructs the model to score catalog candidates
// against the evidence extracted from a mod folder.
const CandidateRankingPrompt = `You identify which game entity a user-made mod folder targets.
You receive the folder name, evidence extracted from its files, and a shortlist of catalog candidates.
Score every candidate with a probability between 0 and 1 that the folder targets it.
Scores are independent; several candidates may score low.
Respond with JSON only: {"scores":[{"id":<candidate id>,"score":<0..1>}]}`

// RankCandidate is one shortlist entry sent to the model.
type RankCandidate struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	ObjectType string   `json:"object_type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// RankRequest carries the evidence for one folder.
type RankRequest struct {
	Folder     string          `json:"folder"`
	Evidence   []string        `json:"evidence,omitempty"`
	Candidates []RankCandidate `json:"candidates"`
}

// RankScore is the model's score for one candidate.
type RankScore struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}

// RankCandidates asks the model to score the shortlist. Scores are clamped to
// [0,1] and ids outside the shortlist are dropped.
func (c *Client) RankCandidates(ctx context.Context, req RankRequest) ([]RankScore, error) {
	if len(req.Candidates) == 0 {
		return nil, errors.New("llm rank: candidates required")
	}
	prompt, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llm rank: encode request: %w", err)
	}
	content, err := c.CompleteJSON(ctx, CandidateRankingPrompt, string(prompt))
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Scores []RankScore `json:"scores"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("llm rank: parse payload: %w", err)
	}
	known := make(map[int]struct{}, len(req.Candidates))
	for _, cand := range req.Candidates {
		known[cand.ID] = struct{}{}
	}
	out := make([]RankScore, 0, len(parsed.Scores))
	for _, s := range parsed.Scores {
		if _, ok := known[s.ID]; !ok {
			continue
		}
		out = append(out, RankScore{ID: s.ID, Score: clamp01(s.Score)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("llm rank: no usable scores in %s", snippet(strings.TrimSpace(content)))
	}
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
