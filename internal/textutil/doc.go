// Package textutil provides the text primitives shared by catalog indexing,
// signal collection, and re-ranking.
//
// The primary use cases are:
//   - Folding names into lower-cased, diacritic-free tokens (camel case and
//     letter/digit boundaries are split, stopwords and numbers dropped)
//   - Condensing names into a separator-free form so multi-word aliases match
//     concatenated folder names
//   - Building TF-IDF fingerprints and computing cosine similarity between them
//
// Every function is deterministic: the same input always yields the same
// tokens in the same order, which the matcher relies on for reproducible
// results.
package textutil
