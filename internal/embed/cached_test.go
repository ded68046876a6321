package embed

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/ciscope/internal/cache"
)

type countingEmbedder struct {
	calls int
	texts []string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.texts = append(c.texts, texts...)
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = []float32{float32(len(t)), 1}
	}
	return vectors, nil
}

func TestCachedEmbedder_SecondCallHitsCache(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachedEmbedder(inner, cache.NewMemoryCache(time.Minute, time.Minute), "m", time.Minute)

	ctx := context.Background()
	first, err := e.EmbedBatch(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("first EmbedBatch failed: %v", err)
	}
	second, err := e.EmbedBatch(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("second EmbedBatch failed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", inner.calls)
	}
	for i := range first {
		if first[i][0] != second[i][0] {
			t.Errorf("Cached vector %d differs from original", i)
		}
	}
}

func TestCachedEmbedder_OnlyMissesReachBackend(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachedEmbedder(inner, cache.NewMemoryCache(time.Minute, time.Minute), "m", time.Minute)

	ctx := context.Background()
	if _, err := e.EmbedBatch(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	inner.texts = nil

	vectors, err := e.EmbedBatch(ctx, []string{"alpha", "gamma"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(inner.texts) != 1 || inner.texts[0] != "gamma" {
		t.Errorf("Expected only the miss to reach the backend, got %v", inner.texts)
	}
	if int(vectors[0][0]) != len("alpha") || int(vectors[1][0]) != len("gamma") {
		t.Errorf("Vectors misaligned with inputs: %v", vectors)
	}
}
