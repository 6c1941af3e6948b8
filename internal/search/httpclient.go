package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// HTTPClient adapts a Google Custom Search JSON API-compatible endpoint to
// Client. BaseURL, APIKey, and EngineID come from the process configuration.
type HTTPClient struct {
	BaseURL  string
	APIKey   string
	EngineID string
	HTTP     *http.Client
}

// NewHTTPClient constructs an HTTPClient. baseURL defaults to the Google
// Custom Search endpoint when empty.
func NewHTTPClient(baseURL, apiKey, engineID string) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	return &HTTPClient{BaseURL: baseURL, APIKey: apiKey, EngineID: engineID, HTTP: &http.Client{}}
}

type searchResponseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items []searchResponseItem `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Search issues a single search request for query, capped to maxResults hits.
func (c *HTTPClient) Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]model.SearchHit, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("cx", c.EngineID)
	params.Set("q", query)
	if maxResults > 0 && maxResults <= 10 {
		params.Set("num", fmt.Sprintf("%d", maxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, WrapError(query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, WrapError(query, fmt.Errorf("search provider returned status %d", resp.StatusCode))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, WrapError(query, fmt.Errorf("decode search response: %w", err))
	}
	if parsed.Error != nil {
		return nil, WrapError(query, fmt.Errorf("search provider error: %s", parsed.Error.Message))
	}

	hits := make([]model.SearchHit, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if maxResults > 0 && i >= maxResults {
			break
		}
		hits = append(hits, model.SearchHit{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return hits, nil
}
