package rerank

import (
	"context"
	"errors"

	"modmatch/internal/catalog"
	"modmatch/internal/matcher"
	"modmatch/internal/services/llm"
)

// maxEvidence bounds how many folder strings are sent to the model.
const maxEvidence = 40

// Ranker is the subset of the LLM client used for re-ranking.
type Ranker interface {
	RankCandidates(ctx context.Context, req llm.RankRequest) ([]llm.RankScore, error)
}

// LLM asks a chat model to score the shortlist.
type LLM struct {
	client Ranker
}

// NewLLM wraps an LLM client.
func NewLLM(client Ranker) *LLM {
	return &LLM{client: client}
}

// Name implements matcher.Reranker.
func (*LLM) Name() string { return "llm" }

// Rerank implements matcher.Reranker.
func (p *LLM) Rerank(ctx context.Context, req matcher.RerankRequest) (map[catalog.EntryID]float64, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm rerank: client not configured")
	}
	scores, err := p.client.RankCandidates(ctx, buildRankRequest(req))
	if err != nil {
		return nil, err
	}
	out := make(map[catalog.EntryID]float64, len(scores))
	for _, s := range scores {
		out[catalog.EntryID(s.ID)] = s.Score
	}
	return out, nil
}

func buildRankRequest(req matcher.RerankRequest) llm.RankRequest {
	out := llm.RankRequest{Folder: req.Signals.FolderName}
	seen := make(map[string]struct{})
	add := func(values []string) {
		for _, v := range values {
			if len(out.Evidence) >= maxEvidence {
				return
			}
			if _, ok := seen[v]; ok || v == "" {
				continue
			}
			seen[v] = struct{}{}
			out.Evidence = append(out.Evidence, v)
		}
	}
	add(req.Signals.IniStrings)
	add(req.Signals.DeepStrings)
	add(req.Signals.IniTokens)

	for _, c := range req.Candidates {
		rc := llm.RankCandidate{ID: int(c.EntryID), Name: c.Name, ObjectType: c.ObjectType}
		if req.Catalog != nil && req.Catalog.Valid(c.EntryID) {
			rc.Tags = append([]string(nil), req.Catalog.Entry(c.EntryID).Tags...)
		}
		out.Candidates = append(out.Candidates, rc)
	}
	return out
}
