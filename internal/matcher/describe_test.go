package matcher

import (
	"context"
	"strings"
	"testing"

	"modmatch/internal/signals"
	"modmatch/internal/testsupport"
)

func TestDescribe(t *testing.T) {
	cat := testsupport.SampleCatalog(t)

	auto := Match(context.Background(), cat, folderSignals(t, "Unnamed", map[string]string{"mod.ini": uniqueHashIni}, signals.ModeFull), TypeHint{})
	s := Describe(auto)
	if s.Label != "Auto Matched: Hu Tao" || s.Confidence != "High" {
		t.Fatalf("summary = %+v", s)
	}
	if !strings.Contains(s.Detail, "hash overlap") {
		t.Fatalf("detail = %q", s.Detail)
	}

	review := Match(context.Background(), cat, folderSignals(t, "Kamisato", nil, signals.ModeFull), TypeHint{})
	if s := Describe(review); !strings.HasPrefix(s.Label, "Needs Review: ") || !strings.Contains(s.Detail, "2 candidates") {
		t.Fatalf("review summary = %+v", s)
	}

	none := Describe(Result{Status: StatusNoMatch})
	if none.Label != "No Match" || none.Confidence != "None" {
		t.Fatalf("no-match summary = %+v", none)
	}
}

func TestExplain(t *testing.T) {
	records := Explain([]Reason{
		HashOverlap{Hashes: []string{"a1b2c3d4"}, Unique: 1},
		TokenOverlap{Matched: []string{"hu"}, Jaccard: 0.5},
	})
	if len(records) != 2 || records[0].Kind != KindHashOverlap || !records[0].Primary || records[1].Primary {
		t.Fatalf("records = %+v", records)
	}
}
