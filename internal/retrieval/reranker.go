package retrieval

import (
	"context"
	"fmt"
)

// RelevanceModel scores how relevant a passage is to a query, in [0, 1].
type RelevanceModel interface {
	Relevance(ctx context.Context, query, passage string) (float64, error)
}

// Reranker reorders fused passages with a pairwise relevance model.
// Reranking is an optimization, not a correctness requirement, so it never
// fails: any model error passes the input through unchanged.
type Reranker struct {
	model   RelevanceModel
	verbose bool
}

// NewReranker builds a reranker. A nil model disables reranking.
func NewReranker(model RelevanceModel, verbose bool) *Reranker {
	return &Reranker{model: model, verbose: verbose}
}

// Rerank scores each passage against the query and reorders by relevance,
// truncating to topK. On any degradation the input order is preserved.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []Passage, topK int) []Passage {
	if topK <= 0 || topK > len(passages) {
		topK = len(passages)
	}
	if r.model == nil || len(passages) == 0 {
		return passages[:topK]
	}

	scored := make([]Passage, len(passages))
	copy(scored, passages)
	for i := range scored {
		rel, err := r.model.Relevance(ctx, query, scored[i].Text)
		if err != nil {
			if r.verbose {
				fmt.Printf("Warning: reranker unavailable (%v), keeping fused order\n", err)
			}
			return passages[:topK]
		}
		scored[i].Relevance = &rel
	}

	// Insertion sort keeps equal-relevance passages in fused order.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && *scored[j].Relevance > *scored[j-1].Relevance; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	return scored[:topK]
}
