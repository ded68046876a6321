package embed

import (
	"context"
	"time"

	"github.com/ppiankov/ciscope/internal/cache"
)

// CachedEmbedder wraps an Embedder with a cache keyed on model and text.
// Misses within a batch are embedded together in one backend call, then
// written back individually.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
	model string
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner Embedder, c cache.Cache, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c, model: model, ttl: ttl}
}

// Embed returns the vector for a single text, consulting the cache first.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text in input order. Only cache misses
// hit the backend.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if data, found := e.cache.Get(cache.EmbeddingKey(e.model, text)); found {
			if v, err := cache.DecodeVector(data); err == nil {
				vectors[i] = v
				continue
			}
			// Corrupt entry: drop it and re-embed.
			_ = e.cache.Delete(cache.EmbeddingKey(e.model, text))
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, v := range fresh {
		i := missIdx[j]
		vectors[i] = v
		_ = e.cache.Set(cache.EmbeddingKey(e.model, texts[i]), cache.EncodeVector(v), e.ttl)
	}
	return vectors, nil
}
