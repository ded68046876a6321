package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const relevanceSystem = "You are a relevance judge for pharmaceutical competitive intelligence. " +
	"Rate how relevant a passage is to a query on a 0-100 scale. " +
	"Reply with a single integer and nothing else."

// maxPassageChars bounds prompt size for long chunks.
const maxPassageChars = 1500

var scorePattern = regexp.MustCompile(`\d+`)

// RelevanceScorer judges query/passage relevance through an LLM provider.
// It satisfies the reranker's relevance model contract: scores are in [0, 1].
type RelevanceScorer struct {
	provider Provider
	model    string
}

// NewRelevanceScorer wraps a provider for pairwise relevance scoring.
func NewRelevanceScorer(provider Provider, model string) (*RelevanceScorer, error) {
	if provider == nil {
		return nil, fmt.Errorf("relevance scorer requires a provider")
	}
	return &RelevanceScorer{provider: provider, model: model}, nil
}

// Relevance asks the provider for a 0-100 judgment and normalizes it to [0, 1].
func (s *RelevanceScorer) Relevance(ctx context.Context, query, passage string) (float64, error) {
	if len(passage) > maxPassageChars {
		passage = passage[:maxPassageChars]
	}

	prompt := fmt.Sprintf("Query: %s\n\nPassage:\n%s\n\nRelevance score (0-100):", query, passage)

	resp, err := s.provider.Complete(ctx, CompleteRequest{
		System:      relevanceSystem,
		Prompt:      prompt,
		Model:       s.model,
		MaxTokens:   8,
		Temperature: 0.0,
	})
	if err != nil {
		return 0, fmt.Errorf("relevance completion: %w", err)
	}

	score, err := parseScore(resp.Text)
	if err != nil {
		return 0, err
	}
	return score, nil
}

// parseScore extracts the first integer from the reply and clamps to 0-100.
func parseScore(text string) (float64, error) {
	match := scorePattern.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, fmt.Errorf("no score in reply %q", truncateReply(text))
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", match, err)
	}
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return float64(n) / 100.0, nil
}

func truncateReply(text string) string {
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}
