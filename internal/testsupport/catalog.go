package testsupport

import (
	"testing"

	"modmatch/internal/catalog"
)

// SampleCatalogJSON is a small catalog exercising every entry feature: tags,
// entry aliases, variants with aliases, per-entry and top-level hash tables,
// shared tokens, a shared hash, and a non-character object type.
const SampleCatalogJSON = `{
  "entries": [
    {"name": "Hu Tao", "object_type": "Character", "tags": ["pyro"],
     "skins": [{"name": "Cherries Snow-Laden", "aliases": ["Plum Blossom"]}],
     "hash_db": {"default": ["0xA1B2C3D4"]}},
    {"name": "Kamisato Ayaka", "object_type": "Character", "tags": ["cryo"],
     "skins": [{"name": "Springbloom Missive", "aliases": ["Ayaka Summer"]}]},
    {"name": "Kamisato Ayato", "object_type": "Character", "tags": ["hydro"]},
    {"name": "Raiden Shogun", "object_type": "Character", "tags": ["electro"], "aliases": ["Beelzebul"]},
    {"name": "Xiangling", "object_type": "Character", "tags": ["pyro"]},
    {"name": "Nahida", "object_type": "Character", "tags": ["dendro"]},
    {"name": "Keqing", "object_type": "Character", "tags": ["electro"]},
    {"name": "Keqing (Opulent Splendor)", "object_type": "Character", "tags": ["electro"]},
    {"name": "Wolf's Gravestone", "object_type": "Weapon", "tags": ["claymore"]},
    {"name": "Paimon Menu", "object_type": "UI"},
    {"name": "  "}
  ],
  "hash_db": {
    "kamisato ayaka": {"default": ["11111111"]},
    "Kamisato Ayato": {"default": ["22222222"]},
    "Raiden Shogun": {"default": ["33333333", "DEADBEEFCAFEBABE"], "puppet": ["not-a-hash"]},
    "Nahida": {"default": ["44444444", "55555555"]},
    "Keqing": {"default": ["55555555"]},
    "Unknown Entity": {"default": ["66666666"]}
  }
}`

// Fixture entry ids in SampleCatalogJSON (the blank entry is dropped).
const (
	HuTao catalog.EntryID = iota
	KamisatoAyaka
	KamisatoAyato
	RaidenShogun
	Xiangling
	Nahida
	Keqing
	KeqingOpulent
	WolfsGravestone
	PaimonMenu
)

// SampleCatalog parses and indexes SampleCatalogJSON.
func SampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	entries, err := catalog.Parse([]byte(SampleCatalogJSON))
	if err != nil {
		t.Fatalf("parse sample catalog: %v", err)
	}
	return catalog.Build(entries)
}
