package matcher

import (
	"reflect"
	"testing"

	"modmatch/internal/catalog"
	"modmatch/internal/testsupport"
)

func TestSeedOrdersRarestSourcesFirst(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	hashes := []string{"55555555", "a1b2c3d4", "ffffffff"}
	tokens := []string{"pyro", "kamisato", "zzz"}

	// One-posting hash first, then two-posting sources by key. Hu Tao is
	// already pooled when the pyro source is reached.
	got := Seed(cat, hashes, tokens, 10)
	want := []catalog.EntryID{
		testsupport.HuTao,
		testsupport.Nahida,
		testsupport.Keqing,
		testsupport.KamisatoAyaka,
		testsupport.KamisatoAyato,
		testsupport.Xiangling,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Seed = %v, want %v", got, want)
	}

	capped := Seed(cat, hashes, tokens, 3)
	if !reflect.DeepEqual(capped, want[:3]) {
		t.Fatalf("capped Seed = %v, want %v", capped, want[:3])
	}
}

func TestSeedEmptyEvidenceYieldsEmptyPool(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	if got := Seed(cat, nil, nil, 64); len(got) != 0 {
		t.Fatalf("expected empty pool, got %v", got)
	}
	if got := Seed(cat, []string{"deadbeef"}, []string{"unknown"}, 64); len(got) != 0 {
		t.Fatalf("expected empty pool for unindexed evidence, got %v", got)
	}
}

func TestReplenish(t *testing.T) {
	cat := testsupport.SampleCatalog(t)
	pool := []catalog.EntryID{testsupport.HuTao}
	tokens := []string{"pyro", "kamisato"}

	got := Replenish(cat, pool, tokens, 3, 10, nil)
	want := []catalog.EntryID{testsupport.HuTao, testsupport.KamisatoAyaka, testsupport.KamisatoAyato}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Replenish = %v, want %v", got, want)
	}

	onlyXiangling := func(id catalog.EntryID) bool { return id == testsupport.Xiangling }
	got = Replenish(cat, pool, tokens, 3, 10, onlyXiangling)
	if want := []catalog.EntryID{testsupport.HuTao, testsupport.Xiangling}; !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered Replenish = %v, want %v", got, want)
	}

	full := []catalog.EntryID{1, 2, 3}
	if got := Replenish(cat, full, tokens, 3, 10, nil); !reflect.DeepEqual(got, full) {
		t.Fatalf("pool at min size should be unchanged, got %v", got)
	}
	if got := Replenish(cat, pool, tokens, 8, 1, nil); !reflect.DeepEqual(got, pool) {
		t.Fatalf("pool at seed cap should be unchanged, got %v", got)
	}
}
