package index

import (
	"testing"

	"github.com/ppiankov/ciscope/internal/model"
)

func buildDense(t *testing.T) *DenseIndex {
	t.Helper()
	idx := NewDenseIndex()
	chunks := []model.Chunk{
		{ID: "c1", Text: "hold news", Metadata: map[string]string{"source": "press"}},
		{ID: "c2", Text: "endpoint news", Metadata: map[string]string{"source": "filing"}},
		{ID: "c3", Text: "safety news", Metadata: map[string]string{"source": "press"}},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	if err := idx.Build(chunks, vectors); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return idx
}

func TestDenseIndex_CosineOrdering(t *testing.T) {
	idx := buildDense(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "c1" || hits[1].ID != "c3" {
		t.Errorf("Expected order c1, c3 by similarity, got %s, %s", hits[0].ID, hits[1].ID)
	}
}

func TestDenseIndex_MetadataFilter(t *testing.T) {
	idx := buildDense(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 3, map[string]string{"source": "filing"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "c2" {
		t.Errorf("Expected only c2 with source=filing, got %v", hits)
	}
}

func TestDenseIndex_DimensionMismatch(t *testing.T) {
	idx := buildDense(t)

	if _, err := idx.Search([]float32{1, 0}, 3, nil); err == nil {
		t.Error("Expected error for mismatched query dimension")
	}
}

func TestDenseIndex_BuildRejectsMisalignedBatch(t *testing.T) {
	idx := NewDenseIndex()
	err := idx.Build(
		[]model.Chunk{{ID: "c1", Text: "a"}, {ID: "c2", Text: "b"}},
		[][]float32{{1, 0}},
	)
	if err == nil {
		t.Error("Expected error when chunk and vector counts differ")
	}
}

func TestDenseIndex_DuplicateIDKeepsLastVector(t *testing.T) {
	idx := NewDenseIndex()
	err := idx.Build(
		[]model.Chunk{
			{ID: "a#0", Text: "old text"},
			{ID: "a#0", Text: "new text"},
		},
		[][]float32{
			{1, 0, 0},
			{0, 1, 0},
		},
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Expected duplicate id collapsed to 1 entry, got %d", idx.Len())
	}

	hits, err := idx.Search([]float32{0, 1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "new text" {
		t.Errorf("Expected only the surviving entry, got %v", hits)
	}
}

func TestDenseIndex_EmptyIndex(t *testing.T) {
	idx := NewDenseIndex()

	hits, err := idx.Search([]float32{1, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits from empty index, got %d", len(hits))
	}
}
