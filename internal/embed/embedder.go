// Package embed turns text into dense vectors through an external embedding
// service. Batch results are positional: output[i] always embeds input[i].
package embed

import "context"

// Embedder generates dense vectors for text.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	// A partial result is never returned: any failure fails the whole batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
