package matcher

import (
	"sort"

	"modmatch/internal/catalog"
)

type source struct {
	key      string
	postings []catalog.EntryID
}

// sortSources orders sources rarest first, breaking ties by key.
func sortSources(sources []source) {
	sort.Slice(sources, func(i, j int) bool {
		if len(sources[i].postings) != len(sources[j].postings) {
			return len(sources[i].postings) < len(sources[j].postings)
		}
		return sources[i].key < sources[j].key
	})
}

func hashSources(cat *catalog.Catalog, hashes []string) []source {
	out := make([]source, 0, len(hashes))
	for _, h := range hashes {
		if postings := cat.HashPostings(h); len(postings) > 0 {
			out = append(out, source{key: "h:" + h, postings: postings})
		}
	}
	return out
}

func tokenSources(cat *catalog.Catalog, tokens []string) []source {
	out := make([]source, 0, len(tokens))
	for _, t := range tokens {
		if postings := cat.Postings(t); len(postings) > 0 {
			out = append(out, source{key: "t:" + t, postings: postings})
		}
	}
	return out
}

// Seed builds the initial pool from the postings of observed hashes and
// tokens, rarest source first, until seedCap entries are collected. Empty
// evidence yields an empty pool.
func Seed(cat *catalog.Catalog, hashes, tokens []string, seedCap int) []catalog.EntryID {
	if cat == nil || seedCap <= 0 {
		return []catalog.EntryID{}
	}
	sources := append(hashSources(cat, hashes), tokenSources(cat, tokens)...)
	sortSources(sources)
	return fill(nil, sources, seedCap, nil)
}

// Replenish tops pool back up to minPool (never past seedCap) from token
// sources when it has fallen below both. allow, when set, filters entries
// that may join.
func Replenish(cat *catalog.Catalog, pool []catalog.EntryID, tokens []string, minPool, seedCap int, allow func(catalog.EntryID) bool) []catalog.EntryID {
	if cat == nil || len(pool) >= minPool || len(pool) >= seedCap {
		return pool
	}
	target := minPool
	if seedCap < target {
		target = seedCap
	}
	sources := tokenSources(cat, tokens)
	sortSources(sources)
	return fill(pool, sources, target, allow)
}

func fill(pool []catalog.EntryID, sources []source, limit int, allow func(catalog.EntryID) bool) []catalog.EntryID {
	out := append(make([]catalog.EntryID, 0, limit), pool...)
	seen := make(map[catalog.EntryID]struct{}, limit)
	for _, id := range out {
		seen[id] = struct{}{}
	}
	for _, src := range sources {
		for _, id := range src.postings {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[id]; dup {
				continue
			}
			if allow != nil && !allow(id) {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
