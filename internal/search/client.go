// Package search defines the review pipeline's single point of contact with
// a web-search provider, used only by the evidence reviewer.
package search

import (
	"context"
	"time"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/pipelineerr"
)

// Client is the contract the evidence search stage depends on.
type Client interface {
	Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]model.SearchHit, error)
}

// Func adapts a plain function to Client, mirroring the llm package's
// lightweight adapter style.
type Func func(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]model.SearchHit, error)

func (f Func) Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]model.SearchHit, error) {
	return f(ctx, query, maxResults, timeout)
}

// WrapError converts a transport-level error from a concrete provider
// adapter into an EvidenceSearchError on genuine transport/quota failure
// (as opposed to a clean empty result, which is not an error). The stage
// absorbs it for the one claim whose query failed.
func WrapError(query string, err error) error {
	if err == nil {
		return nil
	}
	return &pipelineerr.EvidenceSearchError{Query: query, Err: err}
}
