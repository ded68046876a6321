package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/ppiankov/ciscope/internal/model"
)

// embeddingsClient is the slice of the OpenAI client we use. Tests inject
// fakes through it.
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API with rate limiting and
// bounded retry on transient failures.
type OpenAIEmbedder struct {
	client     embeddingsClient
	model      string
	batchSize  int
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
	sleep      func(time.Duration) // injectable for tests
}

// NewOpenAIEmbedder creates an embedder from config.
func NewOpenAIEmbedder(cfg model.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return newOpenAIEmbedder(openai.NewClientWithConfig(clientConfig), cfg), nil
}

func newOpenAIEmbedder(client embeddingsClient, cfg model.EmbeddingConfig) *OpenAIEmbedder {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &OpenAIEmbedder{
		client:     client,
		model:      cfg.Model,
		batchSize:  batchSize,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		sleep:      time.Sleep,
	}
}

// Embed returns the vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in request-sized batches, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedOnce(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			e.sleep(backoff(attempt))
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, classifyError(err)
		}

		vectors, err := e.request(ctx, batch)
		if err == nil {
			return vectors, nil
		}
		lastErr = classifyError(err)
		if !Retryable(lastErr) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.maxRetries+1, lastErr)
}

func (e *OpenAIEmbedder) request(ctx context.Context, batch []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: batch,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(batch))
	}

	// Place by response index so reordered responses cannot corrupt the
	// text-to-vector correspondence.
	vectors := make([][]float32, len(batch))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(batch) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embedding response missing vector for input %d", i)
		}
	}
	return vectors, nil
}

func backoff(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
