// Package llm defines the review pipeline's single point of contact with a
// large-language-model provider: one blocking Complete call with retry.
package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/buildsense-ai/review-app-sub000/internal/pipelineerr"
)

// Params bundles the tunables a caller supplies to one Complete call.
type Params struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client is the contract every agent depends on. Implementations talk to a
// concrete provider (OpenAI-compatible HTTP API, local model server, etc.);
// the core never depends on a concrete provider.
type Client interface {
	Complete(ctx context.Context, params Params) (string, error)
}

// Transport is the minimal shape a concrete provider adapter implements:
// one attempt, no retry. Retrier wraps a Transport with the retry policy
// described in the component contract.
type Transport interface {
	Complete(ctx context.Context, params Params) (string, error)
}

// NonRetriableError marks provider errors that should never be retried
// (authentication failures, malformed prompts rejected by the provider).
// Transport implementations wrap such errors with NonRetriableError.
type NonRetriableError struct {
	Err error
}

func (e *NonRetriableError) Error() string { return e.Err.Error() }
func (e *NonRetriableError) Unwrap() error { return e.Err }

// Retrier wraps a Transport with exponential-backoff retry.
type Retrier struct {
	transport Transport
	retries   int
	baseDelay time.Duration
	logger    *slog.Logger
}

// NewRetrier constructs a Retrier. retries is R from the component contract
// (default 3); baseDelay seeds the exponential backoff (doubled each
// attempt). A nil logger installs a discard logger.
func NewRetrier(transport Transport, retries int, baseDelay time.Duration, logger *slog.Logger) *Retrier {
	if retries <= 0 {
		retries = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Retrier{transport: transport, retries: retries, baseDelay: baseDelay, logger: logger}
}

// Complete implements Client, retrying transient transport errors up to the
// configured retry budget with exponential backoff, and surfacing
// non-retriable errors immediately.
func (r *Retrier) Complete(ctx context.Context, params Params) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseDelay
			select {
			case <-ctx.Done():
				return "", &pipelineerr.LLMCallError{Model: params.Model, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if params.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, params.Timeout)
		}
		text, err := r.transport.Complete(callCtx, params)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return text, nil
		}

		var nonRetriable *NonRetriableError
		if errors.As(err, &nonRetriable) {
			return "", &pipelineerr.LLMCallError{Model: params.Model, Err: nonRetriable.Err}
		}

		lastErr = err
		r.logger.Warn("llm call attempt failed", "attempt", attempt, "model", params.Model, "error", err)
	}
	return "", &pipelineerr.LLMCallError{Model: params.Model, Err: lastErr}
}
