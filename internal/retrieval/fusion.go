// Package retrieval implements hybrid search: BM25 and dense candidates
// fused with Reciprocal Rank Fusion, optionally reranked by a pairwise
// relevance model.
package retrieval

import (
	"sort"

	"github.com/ppiankov/ciscope/internal/index"
)

// DefaultRRFK is the standard RRF smoothing constant.
const DefaultRRFK = 60

// Passage is a fused retrieval result. SparseRank and DenseRank are 0-based
// positions in their source lists; nil means the source did not return it.
type Passage struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	SparseRank *int     `json:"sparse_rank,omitempty"`
	DenseRank  *int     `json:"dense_rank,omitempty"`
	Relevance  *float64 `json:"relevance,omitempty"`
}

// FuseRRF merges two ranked candidate lists with Reciprocal Rank Fusion:
// each list contributes 1/(k+rank) for every id it contains. No score
// normalization is needed, so BM25's unbounded scores and cosine's [-1,1]
// combine cleanly. Ties keep first-encounter order (sparse list first).
func FuseRRF(sparse, dense []index.Hit, k float64) []Passage {
	if k <= 0 {
		k = DefaultRRFK
	}

	order := make(map[string]int)
	fused := make([]Passage, 0, len(sparse)+len(dense))

	for rank, h := range sparse {
		r := rank
		order[h.ID] = len(fused)
		fused = append(fused, Passage{
			ID:         h.ID,
			Text:       h.Text,
			Score:      1 / (k + float64(r)),
			SparseRank: &r,
		})
	}
	for rank, h := range dense {
		r := rank
		if i, seen := order[h.ID]; seen {
			fused[i].Score += 1 / (k + float64(r))
			fused[i].DenseRank = &r
			continue
		}
		order[h.ID] = len(fused)
		fused = append(fused, Passage{
			ID:        h.ID,
			Text:      h.Text,
			Score:     1 / (k + float64(r)),
			DenseRank: &r,
		})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
