package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/ciscope/internal/embed"
	"github.com/ppiankov/ciscope/internal/model"
)

// hashEmbedder maps texts onto a tiny deterministic vector space so dense
// search is exercised without a network.
type hashEmbedder struct {
	failSearch bool
}

func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if h.failSearch {
		return nil, embed.ErrRateLimited
	}
	vectors, err := h.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (h *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 8)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			var sum int
			for _, r := range w {
				sum += int(r)
			}
			v[sum%8]++
		}
		vectors[i] = v
	}
	return vectors, nil
}

func retrievalConfig() model.RetrievalConfig {
	return model.RetrievalConfig{SparseTopN: 50, DenseTopN: 50, FinalTopK: 10, RRFK: 60}
}

func testChunks() []model.Chunk {
	return []model.Chunk{
		{ID: "c1", DocID: "d1", Text: "partial clinical hold on KRAS trial", Metadata: map[string]string{"source": "press"}},
		{ID: "c2", DocID: "d1", Text: "phase 3 met primary endpoint", Metadata: map[string]string{"source": "filing"}},
		{ID: "c3", DocID: "d2", Text: "complete response letter issued", Metadata: map[string]string{"source": "press"}},
	}
}

func TestHybridRetriever_SearchReturnsFusedPassages(t *testing.T) {
	r := NewHybridRetriever(&hashEmbedder{}, retrievalConfig(), false)
	ctx := context.Background()

	if err := r.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	passages, err := r.Search(ctx, "clinical hold KRAS trial", 2, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) == 0 || len(passages) > 2 {
		t.Fatalf("Expected 1-2 passages, got %d", len(passages))
	}
	if passages[0].ID != "c1" {
		t.Errorf("Expected c1 first for exact term and vector match, got %s", passages[0].ID)
	}
	if passages[0].Score <= 0 {
		t.Error("Expected positive fused score")
	}
}

func TestHybridRetriever_UnindexedSparseDegradesToDense(t *testing.T) {
	r := NewHybridRetriever(&hashEmbedder{}, retrievalConfig(), false)
	ctx := context.Background()

	// Dense populated directly, sparse left unbuilt.
	chunks := testChunks()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, _ := (&hashEmbedder{}).EmbedBatch(ctx, texts)
	if err := r.dense.Build(chunks, vectors); err != nil {
		t.Fatalf("dense build failed: %v", err)
	}

	passages, err := r.Search(ctx, "clinical hold", 10, nil)
	if err != nil {
		t.Fatalf("Expected dense-only degradation, got error: %v", err)
	}
	for _, p := range passages {
		if p.SparseRank != nil {
			t.Errorf("Expected no sparse ranks in degraded mode, got %+v", p)
		}
	}
}

func TestHybridRetriever_EmbedderErrorFailsLoudly(t *testing.T) {
	r := NewHybridRetriever(&hashEmbedder{}, retrievalConfig(), false)
	ctx := context.Background()
	if err := r.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	r.embedder = &hashEmbedder{failSearch: true}
	_, err := r.Search(ctx, "anything", 10, nil)
	if !errors.Is(err, embed.ErrRateLimited) {
		t.Errorf("Expected rate limit error surfaced, got: %v", err)
	}
}

func TestHybridRetriever_MetadataFilter(t *testing.T) {
	r := NewHybridRetriever(&hashEmbedder{}, retrievalConfig(), false)
	ctx := context.Background()
	if err := r.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	passages, err := r.Search(ctx, "endpoint", 10, map[string]string{"source": "filing"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, p := range passages {
		if p.DenseRank != nil && p.ID != "c2" {
			t.Errorf("Expected only c2 from dense under filter, got %s", p.ID)
		}
	}
}

func TestHybridRetriever_RejectsInvalidChunk(t *testing.T) {
	r := NewHybridRetriever(&hashEmbedder{}, retrievalConfig(), false)

	err := r.Index(context.Background(), []model.Chunk{{ID: "", Text: "x"}})
	if err == nil {
		t.Error("Expected error for chunk without id")
	}
}
