package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"modmatch/internal/textutil"
)

// Catalog is the immutable, indexed view of a loaded entry list.
type Catalog struct {
	entries     []Entry
	entryTokens [][]string
	aliases     [][]Alias
	condensed   []string
	hashes      [][]string
	types       []string

	tokenPostings map[string][]EntryID
	hashPostings  map[string][]EntryID
	byName        map[string]EntryID
	version       string
}

// Stats summarizes index sizes for diagnostics.
type Stats struct {
	Entries      int            `json:"entries" yaml:"entries"`
	Tokens       int            `json:"tokens" yaml:"tokens"`
	Hashes       int            `json:"hashes" yaml:"hashes"`
	UniqueHashes int            `json:"unique_hashes" yaml:"unique_hashes"`
	Aliases      int            `json:"aliases" yaml:"aliases"`
	ObjectTypes  map[string]int `json:"object_types" yaml:"object_types"`
	Version      string         `json:"version" yaml:"version"`
}

// Build indexes entries. The slice is copied; entries are never mutated.
func Build(entries []Entry) *Catalog {
	c := &Catalog{
		entries:       append([]Entry(nil), entries...),
		entryTokens:   make([][]string, len(entries)),
		aliases:       make([][]Alias, len(entries)),
		condensed:     make([]string, len(entries)),
		hashes:        make([][]string, len(entries)),
		types:         make([]string, len(entries)),
		tokenPostings: make(map[string][]EntryID),
		hashPostings:  make(map[string][]EntryID),
		byName:        make(map[string]EntryID, len(entries)),
	}
	for i, entry := range c.entries {
		id := EntryID(i)
		c.types[i] = strings.ToLower(strings.TrimSpace(entry.ObjectType))
		c.condensed[i] = textutil.Condense(entry.Name)
		if _, ok := c.byName[textutil.Fold(entry.Name)]; !ok {
			c.byName[textutil.Fold(entry.Name)] = id
		}

		own := textutil.Tokenize(entry.Name)
		for _, tag := range entry.Tags {
			own = append(own, textutil.Tokenize(tag)...)
		}
		for _, alias := range entry.Aliases {
			own = append(own, textutil.Tokenize(alias)...)
		}
		c.entryTokens[i] = textutil.SortedUnique(own)

		c.aliases[i] = buildAliases(entry)
		indexed := append([]string(nil), c.entryTokens[i]...)
		for _, alias := range c.aliases[i] {
			indexed = append(indexed, alias.Tokens...)
		}
		for _, token := range textutil.SortedUnique(indexed) {
			c.tokenPostings[token] = append(c.tokenPostings[token], id)
		}

		var hashes []string
		for _, list := range entry.Hashes {
			for _, raw := range list {
				if h, ok := NormalizeHash(raw); ok {
					hashes = append(hashes, h)
				}
			}
		}
		c.hashes[i] = textutil.SortedUnique(hashes)
		for _, h := range c.hashes[i] {
			c.hashPostings[h] = append(c.hashPostings[h], id)
		}
	}
	c.version = computeVersion(c.entries)
	return c
}

// buildAliases collects entry aliases, variant names and variant aliases,
// dropping ones that tokenize to nothing and duplicates of the entry name.
func buildAliases(entry Entry) []Alias {
	nameKey := textutil.Condense(entry.Name)
	seen := map[string]struct{}{nameKey: {}}
	var out []Alias
	add := func(text, variant string) {
		condensed := textutil.Condense(text)
		if condensed == "" {
			return
		}
		if _, ok := seen[condensed]; ok {
			return
		}
		tokens := textutil.TokenSet(text)
		if len(tokens) == 0 {
			return
		}
		seen[condensed] = struct{}{}
		out = append(out, Alias{Text: strings.TrimSpace(text), Variant: variant, Tokens: tokens, Condensed: condensed})
	}
	for _, alias := range entry.Aliases {
		add(alias, "")
	}
	for _, variant := range entry.Variants {
		add(variant.Name, variant.Name)
		for _, alias := range variant.Aliases {
			add(alias, variant.Name)
		}
	}
	return out
}

func computeVersion(entries []Entry) string {
	encoded, err := json.Marshal(entries)
	if err != nil {
		encoded = []byte(fmt.Sprint(len(entries)))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(encoded))
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Valid reports whether id addresses an entry.
func (c *Catalog) Valid(id EntryID) bool {
	return c != nil && id >= 0 && int(id) < len(c.entries)
}

// Entry returns the entry for id. The returned value shares slices with the
// catalog and must be treated as read-only.
func (c *Catalog) Entry(id EntryID) Entry {
	return c.entries[id]
}

// Name returns the display name of id.
func (c *Catalog) Name(id EntryID) string {
	return c.entries[id].Name
}

// ObjectType returns the lower-cased object type of id.
func (c *Catalog) ObjectType(id EntryID) string {
	return c.types[id]
}

// EntryTokens returns the sorted tokens of the entry's name, tags and aliases.
func (c *Catalog) EntryTokens(id EntryID) []string {
	return c.entryTokens[id]
}

// Aliases returns the searchable alternative names of id.
func (c *Catalog) Aliases(id EntryID) []Alias {
	return c.aliases[id]
}

// CondensedName returns the separator-free folded name of id.
func (c *Catalog) CondensedName(id EntryID) string {
	return c.condensed[id]
}

// CondensedTags returns the separator-free folded tags of id.
func (c *Catalog) CondensedTags(id EntryID) []string {
	tags := c.entries[id].Tags
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if condensed := textutil.Condense(tag); condensed != "" {
			out = append(out, condensed)
		}
	}
	return out
}

// Hashes returns the normalized hashes of id.
func (c *Catalog) Hashes(id EntryID) []string {
	return c.hashes[id]
}

// Postings returns the sorted entries indexed under token.
func (c *Catalog) Postings(token string) []EntryID {
	return c.tokenPostings[token]
}

// HashPostings returns the sorted entries that declare hash.
func (c *Catalog) HashPostings(hash string) []EntryID {
	return c.hashPostings[hash]
}

// TokenDF returns the document frequency of token.
func (c *Catalog) TokenDF(token string) int {
	return len(c.tokenPostings[token])
}

// HashDF returns the document frequency of hash.
func (c *Catalog) HashDF(hash string) int {
	return len(c.hashPostings[hash])
}

// TokenIDF returns ln((N+1)/(df+1)) + 1 for token.
func (c *Catalog) TokenIDF(token string) float64 {
	return textutil.SmoothIDF(c.Len(), c.TokenDF(token))
}

// HashIDF returns ln((N+1)/(df+1)) + 1 for hash.
func (c *Catalog) HashIDF(hash string) float64 {
	return textutil.SmoothIDF(c.Len(), c.HashDF(hash))
}

// Lookup finds an entry by case- and diacritic-insensitive name.
func (c *Catalog) Lookup(name string) (EntryID, bool) {
	id, ok := c.byName[textutil.Fold(strings.TrimSpace(name))]
	return id, ok
}

// Version identifies the catalog content; it changes whenever any entry does.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// Stats returns index sizes.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Entries:     c.Len(),
		Tokens:      len(c.tokenPostings),
		Hashes:      len(c.hashPostings),
		ObjectTypes: make(map[string]int),
		Version:     c.version,
	}
	for _, postings := range c.hashPostings {
		if len(postings) == 1 {
			s.UniqueHashes++
		}
	}
	for i := range c.entries {
		s.Aliases += len(c.aliases[i])
		kind := c.types[i]
		if kind == "" {
			kind = "unknown"
		}
		s.ObjectTypes[kind]++
	}
	return s
}

// Tokens returns every indexed token in sorted order.
func (c *Catalog) Tokens() []string {
	out := make([]string, 0, len(c.tokenPostings))
	for token := range c.tokenPostings {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
