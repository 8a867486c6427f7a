// Package rerank provides the optional second-opinion providers consulted by
// the matcher when a result needs review.
//
// Lexical scores candidates offline with IDF-weighted cosine similarity
// between the folder evidence and each catalog entry. LLM delegates to an
// OpenRouter-compatible chat model. Either provider can be wrapped by Guarded,
// which adds a per-call timeout, a token bucket rate limit and a circuit
// breaker so a failing provider degrades to "no re-rank" instead of stalling
// a batch.
//
// New assembles the matcher.RerankContext from configuration, including the
// cache backend (in-memory or the SQLite store in rerankcache).
package rerank
