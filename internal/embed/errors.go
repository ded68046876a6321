package embed

import (
	"context"
	"errors"
	"net"

	"github.com/sashabaranov/go-openai"
)

// Sentinel errors for the embedding backend failure modes callers are
// expected to distinguish. Retrieval surfaces these as actionable messages
// instead of raw transport errors.
var (
	ErrRateLimited = errors.New("embedding service rate limit exceeded, try again later")
	ErrTimeout     = errors.New("embedding request timed out")
	ErrConnection  = errors.New("cannot reach embedding service")
)

// Retryable reports whether the error is transient and worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnection)
}

// classifyError maps transport and API errors onto the sentinel taxonomy.
// Unrecognized errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return errors.Join(ErrRateLimited, err)
		case apiErr.HTTPStatusCode >= 500:
			return errors.Join(ErrConnection, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Join(ErrTimeout, err)
		}
		return errors.Join(ErrConnection, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Join(ErrConnection, err)
	}

	return err
}
