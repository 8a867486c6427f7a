package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"modmatch/internal/textutil"
)

var (
	// ErrCatalogRead reports that the catalog file could not be read.
	ErrCatalogRead = errors.New("catalog read failed")
	// ErrCatalogParse reports a malformed catalog document.
	ErrCatalogParse = errors.New("catalog parse failed")
)

type document struct {
	Entries []Entry                        `json:"entries"`
	HashDB  map[string]map[string][]string `json:"hash_db"`
}

// Load reads and indexes the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogRead, path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Build(entries), nil
}

// Parse decodes a catalog document. Both a bare array of entries and an object
// with an entries array are accepted; a top-level hash_db map is merged into
// the entry with the same (case-insensitive) name. Entries without a name are
// dropped.
func Parse(data []byte) ([]Entry, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCatalogParse)
	}
	var doc document
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &doc.Entries); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogParse, err)
		}
	case '{':
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: expected array or object, got %q", ErrCatalogParse, data[0])
	}

	entries := make([]Entry, 0, len(doc.Entries))
	byName := make(map[string]int, len(doc.Entries))
	for _, entry := range doc.Entries {
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			continue
		}
		key := textutil.Fold(entry.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = len(entries)
		}
		entries = append(entries, entry)
	}
	for name, variants := range doc.HashDB {
		idx, ok := byName[textutil.Fold(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		entries[idx].Hashes = mergeHashes(entries[idx].Hashes, variants)
	}
	return entries, nil
}

func mergeHashes(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string][]string, len(dst)+len(src))
	for variant, hashes := range dst {
		out[variant] = append([]string(nil), hashes...)
	}
	for variant, hashes := range src {
		out[variant] = append(out[variant], hashes...)
	}
	return out
}
