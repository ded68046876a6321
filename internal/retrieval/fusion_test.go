package retrieval

import (
	"math"
	"testing"

	"github.com/ppiankov/ciscope/internal/index"
)

func hits(ids ...string) []index.Hit {
	out := make([]index.Hit, len(ids))
	for i, id := range ids {
		out[i] = index.Hit{ID: id, Text: "text " + id, Score: float64(len(ids) - i)}
	}
	return out
}

func TestFuseRRF_BothListsContribute(t *testing.T) {
	// c2 is mid-ranked in both lists, c1 and c3 top one list each.
	sparse := hits("c1", "c2", "c3")
	dense := hits("c3", "c2", "c4")

	fused := FuseRRF(sparse, dense, 60)
	if len(fused) != 4 {
		t.Fatalf("Expected 4 unique ids, got %d", len(fused))
	}

	byID := map[string]Passage{}
	for _, p := range fused {
		byID[p.ID] = p
	}

	// c2 appears in both lists at rank 1: 2/(60+1).
	want := 2.0 / 61.0
	if math.Abs(byID["c2"].Score-want) > 1e-12 {
		t.Errorf("Expected c2 score %v, got %v", want, byID["c2"].Score)
	}
	// c2 (two mid ranks) must outrank c4 (one low rank).
	if byID["c2"].Score <= byID["c4"].Score {
		t.Error("Expected dual-list id to outrank single-list low-rank id")
	}
}

func TestFuseRRF_RanksRecorded(t *testing.T) {
	fused := FuseRRF(hits("c1", "c2"), hits("c2"), 60)

	byID := map[string]Passage{}
	for _, p := range fused {
		byID[p.ID] = p
	}
	c1 := byID["c1"]
	if c1.SparseRank == nil || *c1.SparseRank != 0 || c1.DenseRank != nil {
		t.Errorf("Expected c1 sparse rank 0 and no dense rank, got %+v", c1)
	}
	c2 := byID["c2"]
	if c2.SparseRank == nil || *c2.SparseRank != 1 || c2.DenseRank == nil || *c2.DenseRank != 0 {
		t.Errorf("Expected c2 ranks 1/0, got %+v", c2)
	}
}

func TestFuseRRF_EmptySparsePassesThroughDense(t *testing.T) {
	dense := hits("c1", "c2", "c3")

	fused := FuseRRF(nil, dense, 60)
	if len(fused) != 3 {
		t.Fatalf("Expected 3 passages, got %d", len(fused))
	}
	for i, p := range fused {
		if p.ID != dense[i].ID {
			t.Errorf("Expected dense order preserved at %d, got %s", i, p.ID)
		}
		if p.SparseRank != nil {
			t.Errorf("Expected no sparse rank for %s", p.ID)
		}
	}
}

func TestFuseRRF_TiesKeepEncounterOrder(t *testing.T) {
	// Disjoint lists at the same ranks produce exact ties pairwise.
	fused := FuseRRF(hits("s1", "s2"), hits("d1", "d2"), 60)

	if fused[0].ID != "s1" || fused[1].ID != "d1" {
		t.Errorf("Expected tie broken by encounter order (s1 before d1), got %s, %s", fused[0].ID, fused[1].ID)
	}
}

func TestFuseRRF_Idempotent(t *testing.T) {
	sparse := hits("c1", "c2", "c3")
	dense := hits("c3", "c1", "c4")

	a := FuseRRF(sparse, dense, 60)
	b := FuseRRF(sparse, dense, 60)
	if len(a) != len(b) {
		t.Fatal("Fusion not deterministic")
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Score != b[i].Score {
			t.Errorf("Fusion differs at position %d", i)
		}
	}
}
