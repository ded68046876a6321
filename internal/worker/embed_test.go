package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

// seqEmbedder encodes each text's batch-local position and a hash of the
// text so order can be verified after reassembly.
type seqEmbedder struct {
	calls    int32
	failText string
}

func (e *seqEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(context.Background(), []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *seqEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&e.calls, 1)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if e.failText != "" && text == e.failText {
			return nil, errors.New("embedding backend unavailable")
		}
		var sum float32
		for _, r := range text {
			sum += float32(r)
		}
		vectors[i] = []float32{sum}
	}
	return vectors, nil
}

func textSum(text string) float32 {
	var sum float32
	for _, r := range text {
		sum += float32(r)
	}
	return sum
}

func TestParallelEmbedder_PreservesOrder(t *testing.T) {
	inner := &seqEmbedder{}
	embedder := NewParallelEmbedder(inner, 3, 4)

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d", i)
	}

	vectors, err := embedder.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, text := range texts {
		if vectors[i][0] != textSum(text) {
			t.Errorf("vector %d out of order: got %v, want %v", i, vectors[i][0], textSum(text))
		}
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 7 {
		t.Errorf("expected 7 batch calls for 20 texts at size 3, got %d", calls)
	}
}

func TestParallelEmbedder_FailedBatchFailsAll(t *testing.T) {
	inner := &seqEmbedder{failText: "chunk number 7"}
	embedder := NewParallelEmbedder(inner, 2, 3)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d", i)
	}

	if _, err := embedder.EmbedBatch(context.Background(), texts); err == nil {
		t.Error("expected error when one batch fails")
	}
}

func TestParallelEmbedder_SmallInputBypassesPool(t *testing.T) {
	inner := &seqEmbedder{}
	embedder := NewParallelEmbedder(inner, 10, 4)

	vectors, err := embedder.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 1 {
		t.Errorf("expected a single passthrough call, got %d", calls)
	}
}

func TestParallelEmbedder_EmptyInput(t *testing.T) {
	embedder := NewParallelEmbedder(&seqEmbedder{}, 2, 2)

	vectors, err := embedder.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(vectors))
	}
}
