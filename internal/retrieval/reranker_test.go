package retrieval

import (
	"context"
	"errors"
	"testing"
)

type fakeRelevance struct {
	scores map[string]float64
	err    error
}

func (f *fakeRelevance) Relevance(_ context.Context, _, passage string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[passage], nil
}

func passages(ids ...string) []Passage {
	out := make([]Passage, len(ids))
	for i, id := range ids {
		out[i] = Passage{ID: id, Text: "text " + id}
	}
	return out
}

func TestReranker_ReordersByRelevance(t *testing.T) {
	model := &fakeRelevance{scores: map[string]float64{
		"text c1": 0.2,
		"text c2": 0.9,
		"text c3": 0.5,
	}}
	r := NewReranker(model, false)

	out := r.Rerank(context.Background(), "q", passages("c1", "c2", "c3"), 3)
	if out[0].ID != "c2" || out[1].ID != "c3" || out[2].ID != "c1" {
		t.Errorf("Expected order c2, c3, c1, got %s, %s, %s", out[0].ID, out[1].ID, out[2].ID)
	}
	if out[0].Relevance == nil || *out[0].Relevance != 0.9 {
		t.Error("Expected relevance annotation on reranked passages")
	}
}

func TestReranker_ModelErrorPassesThrough(t *testing.T) {
	r := NewReranker(&fakeRelevance{err: errors.New("model offline")}, false)

	in := passages("c1", "c2", "c3")
	out := r.Rerank(context.Background(), "q", in, 2)
	if len(out) != 2 {
		t.Fatalf("Expected truncation to 2, got %d", len(out))
	}
	if out[0].ID != "c1" || out[1].ID != "c2" {
		t.Errorf("Expected input order preserved on degradation, got %s, %s", out[0].ID, out[1].ID)
	}
	if out[0].Relevance != nil {
		t.Error("Expected no relevance annotation on degraded output")
	}
}

func TestReranker_NilModelPassesThrough(t *testing.T) {
	r := NewReranker(nil, false)

	in := passages("c1", "c2")
	out := r.Rerank(context.Background(), "q", in, 5)
	if len(out) != 2 || out[0].ID != "c1" {
		t.Errorf("Expected passthrough, got %v", out)
	}
}

func TestReranker_EmptyInput(t *testing.T) {
	r := NewReranker(&fakeRelevance{}, false)

	out := r.Rerank(context.Background(), "q", nil, 5)
	if len(out) != 0 {
		t.Errorf("Expected empty output, got %d", len(out))
	}
}
