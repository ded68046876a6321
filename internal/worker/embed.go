package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/ciscope/internal/embed"
)

// ParallelEmbedder fans EmbedBatch calls out over a worker pool. Each job
// embeds one request-sized slice of the input; the wrapped embedder handles
// retries and rate limiting per request.
type ParallelEmbedder struct {
	inner     embed.Embedder
	batchSize int
	workers   int
}

// NewParallelEmbedder wraps an embedder with concurrent batch dispatch.
func NewParallelEmbedder(inner embed.Embedder, batchSize, workers int) *ParallelEmbedder {
	if batchSize <= 0 {
		batchSize = 50
	}
	if workers <= 0 {
		workers = 1
	}
	return &ParallelEmbedder{
		inner:     inner,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Embed embeds a single text through the wrapped embedder.
func (p *ParallelEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.inner.Embed(ctx, text)
}

// EmbedBatch embeds texts concurrently, preserving input order. Any failed
// batch fails the whole call; no partial results are returned.
func (p *ParallelEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if p.workers == 1 || len(texts) <= p.batchSize {
		return p.inner.EmbedBatch(ctx, texts)
	}

	pool := NewPool(ctx, p.workers)
	pool.Start()

	jobs := 0
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		pool.Submit(&embedJob{
			offset:   start,
			texts:    texts[start:end],
			embedder: p.inner,
		})
		jobs++
	}

	results := pool.Wait()
	if len(results) != jobs {
		return nil, fmt.Errorf("embedding aborted: %d of %d batches completed", len(results), jobs)
	}

	// Report the earliest failed batch for determinism.
	sort.Slice(results, func(i, j int) bool {
		return results[i].(*embedResult).offset < results[j].(*embedResult).offset
	})

	out := make([][]float32, len(texts))
	for _, r := range results {
		res := r.(*embedResult)
		if res.err != nil {
			return nil, fmt.Errorf("embed batch at offset %d: %w", res.offset, res.err)
		}
		copy(out[res.offset:], res.vectors)
	}

	return out, nil
}

type embedJob struct {
	offset   int
	texts    []string
	embedder embed.Embedder
}

func (j *embedJob) Execute(ctx context.Context) Result {
	vectors, err := j.embedder.EmbedBatch(ctx, j.texts)
	return &embedResult{offset: j.offset, vectors: vectors, err: err}
}

type embedResult struct {
	offset  int
	vectors [][]float32
	err     error
}

func (r *embedResult) GetError() error {
	return r.err
}
