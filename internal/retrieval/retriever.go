package retrieval

import (
	"context"
	"fmt"

	"github.com/ppiankov/ciscope/internal/embed"
	"github.com/ppiankov/ciscope/internal/index"
	"github.com/ppiankov/ciscope/internal/model"
)

// HybridRetriever combines a BM25 index and a dense vector index.
//
// Failure semantics are asymmetric: an unbuilt sparse index degrades the
// search to dense-only, but embedding backend errors fail the call. A search
// is never allowed to silently return partial dense results.
type HybridRetriever struct {
	sparse   *index.SparseIndex
	dense    *index.DenseIndex
	embedder embed.Embedder
	cfg      model.RetrievalConfig
	verbose  bool
}

// NewHybridRetriever builds a retriever over empty indices.
func NewHybridRetriever(embedder embed.Embedder, cfg model.RetrievalConfig, verbose bool) *HybridRetriever {
	return &HybridRetriever{
		sparse:   index.NewSparseIndex(),
		dense:    index.NewDenseIndex(),
		embedder: embedder,
		cfg:      cfg,
		verbose:  verbose,
	}
}

// Index rebuilds both indices from the given chunks. Chunk texts are
// embedded in batches; the positional chunk-to-vector correspondence is
// guaranteed by the embedder contract.
func (r *HybridRetriever) Index(ctx context.Context, chunks []model.Chunk) error {
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("index: embed chunks: %w", err)
	}

	if err := r.dense.Build(chunks, vectors); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	r.sparse.Build(chunks)
	return nil
}

// NumChunks reports the size of the indexed corpus.
func (r *HybridRetriever) NumChunks() int {
	return r.sparse.Len()
}

// Search returns the top-k passages for the query, fused across both
// indices. filters restricts dense candidates by exact metadata match.
func (r *HybridRetriever) Search(ctx context.Context, query string, topK int, filters map[string]string) ([]Passage, error) {
	if topK <= 0 {
		topK = r.cfg.FinalTopK
	}

	sparseHits := r.sparse.Search(query, r.cfg.SparseTopN)
	if len(sparseHits) == 0 && r.verbose {
		fmt.Printf("Warning: sparse index empty or no term matches, using dense-only retrieval\n")
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	denseHits, err := r.dense.Search(queryVec, r.cfg.DenseTopN, filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	fused := FuseRRF(sparseHits, denseHits, r.cfg.RRFK)
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused, nil
}
