package rerank

import (
	"context"
	"errors"

	"modmatch/internal/catalog"
	"modmatch/internal/matcher"
	"modmatch/internal/textutil"
)

// nameWeight repeats folder name tokens so the folder name outweighs
// incidental file and INI tokens.
const nameWeight = 2

// Lexical scores candidates by cosine similarity of IDF-weighted term vectors.
type Lexical struct{}

// NewLexical returns the offline provider.
func NewLexical() *Lexical { return &Lexical{} }

// Name implements matcher.Reranker.
func (*Lexical) Name() string { return "lexical" }

// Rerank implements matcher.Reranker.
func (*Lexical) Rerank(ctx context.Context, req matcher.RerankRequest) (map[catalog.EntryID]float64, error) {
	if req.Catalog == nil {
		return nil, errors.New("lexical rerank: catalog required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := make([]string, 0, nameWeight*len(req.Signals.NameTokens)+len(req.Signals.DeepTokens)+len(req.Signals.IniTokens))
	for range nameWeight {
		tokens = append(tokens, req.Signals.NameTokens...)
	}
	tokens = append(tokens, req.Signals.DeepTokens...)
	tokens = append(tokens, req.Signals.IniTokens...)
	folder := textutil.FromTokens(tokens)

	idf := make(map[string]float64)
	weigh := func(fp *textutil.Fingerprint) {
		for _, term := range fp.Terms() {
			if _, ok := idf[term]; !ok {
				idf[term] = req.Catalog.TokenIDF(term)
			}
		}
	}
	weigh(folder)
	entries := make(map[catalog.EntryID]*textutil.Fingerprint, len(req.Candidates))
	for _, c := range req.Candidates {
		fp := textutil.FromTokens(req.Catalog.EntryTokens(c.EntryID))
		weigh(fp)
		entries[c.EntryID] = fp
	}

	folder = folder.WithIDF(idf)
	scores := make(map[catalog.EntryID]float64, len(req.Candidates))
	for _, c := range req.Candidates {
		scores[c.EntryID] = textutil.CosineSimilarity(folder, entries[c.EntryID].WithIDF(idf))
	}
	return scores, nil
}
