package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ppiankov/ciscope/internal/model"
)

// DenseIndex is an in-memory vector index searched by cosine similarity.
// Entries carry the chunk's metadata so searches can apply equality filters.
type DenseIndex struct {
	mu      sync.RWMutex
	entries []denseEntry
	dim     int
}

type denseEntry struct {
	chunk  model.Chunk
	vector []float32
	norm   float64
}

// NewDenseIndex returns an empty index.
func NewDenseIndex() *DenseIndex {
	return &DenseIndex{}
}

// Build replaces the index contents. chunks and vectors are positional:
// vectors[i] embeds chunks[i]. Dimension mismatches within the batch are
// rejected up front, before any state changes. A chunk whose ID already
// appeared in the batch replaces the earlier occurrence, matching the
// sparse index, so fusion never sees the same ID twice.
func (d *DenseIndex) Build(chunks []model.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("dense index: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	dim := 0
	entries := make([]denseEntry, 0, len(chunks))
	byID := make(map[string]int, len(chunks))
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("dense index: empty vector for chunk %s", chunks[i].ID)
		}
		if dim == 0 {
			dim = len(v)
		} else if len(v) != dim {
			return fmt.Errorf("dense index: chunk %s has dimension %d, want %d", chunks[i].ID, len(v), dim)
		}
		e := denseEntry{
			chunk:  chunks[i],
			vector: v,
			norm:   vectorNorm(v),
		}
		if prev, ok := byID[chunks[i].ID]; ok {
			entries[prev] = e
			continue
		}
		byID[chunks[i].ID] = len(entries)
		entries = append(entries, e)
	}

	d.mu.Lock()
	d.entries = entries
	d.dim = dim
	d.mu.Unlock()
	return nil
}

// Len reports the number of indexed vectors.
func (d *DenseIndex) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Search returns the top-n chunks by cosine similarity to the query vector.
// Non-nil filters restrict results to chunks whose metadata matches every
// key/value pair exactly. Ties break on chunk ID.
func (d *DenseIndex) Search(query []float32, n int, filters map[string]string) ([]Hit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.entries) == 0 || n <= 0 {
		return nil, nil
	}
	if len(query) != d.dim {
		return nil, fmt.Errorf("dense index: query dimension %d, index dimension %d", len(query), d.dim)
	}

	qnorm := vectorNorm(query)
	if qnorm == 0 {
		return nil, fmt.Errorf("dense index: zero query vector")
	}

	hits := make([]Hit, 0, n)
	for _, e := range d.entries {
		if !matchesFilters(e.chunk.Metadata, filters) {
			continue
		}
		if e.norm == 0 {
			continue
		}
		hits = append(hits, Hit{
			ID:    e.chunk.ID,
			Text:  e.chunk.Text,
			Score: dot(query, e.vector) / (qnorm * e.norm),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

func matchesFilters(meta, filters map[string]string) bool {
	for k, v := range filters {
		if meta[k] != v {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
