package catalog

// EntryID identifies an entry by its position in the catalog.
type EntryID int

// Variant is one named skin of an entry.
type Variant struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// Entry is one known game object.
type Entry struct {
	Name       string              `json:"name"`
	Tags       []string            `json:"tags,omitempty"`
	Aliases    []string            `json:"aliases,omitempty"`
	ObjectType string              `json:"object_type,omitempty"`
	Variants   []Variant           `json:"skins,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
	Hashes     map[string][]string `json:"hash_db,omitempty"`
}

// Alias is a searchable alternative name of an entry: an entry-level alias, a
// variant name, or one of a variant's aliases.
type Alias struct {
	Text      string
	Variant   string
	Tokens    []string
	Condensed string
}
