package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsense-ai/review-app-sub000/internal/pipelineerr"
)

func TestNewHTTPClient_DefaultsBaseURLWhenEmpty(t *testing.T) {
	c := NewHTTPClient("", "key", "engine")
	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", c.BaseURL)
}

func TestHTTPClient_Search_ReturnsHitsCappedAtMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		assert.Equal(t, "engine-1", r.URL.Query().Get("cx"))
		assert.Equal(t, "golang concurrency patterns", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"A","link":"https://a.example","snippet":"snippet a"},
			{"title":"B","link":"https://b.example","snippet":"snippet b"},
			{"title":"C","link":"https://c.example","snippet":"snippet c"}
		]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "testkey", "engine-1")
	hits, err := client.Search(context.Background(), "golang concurrency patterns", 2, time.Second)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "A", hits[0].Title)
	assert.Equal(t, "https://a.example", hits[0].URL)
}

func TestHTTPClient_Search_WrapsProviderErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "testkey", "engine-1")
	_, err := client.Search(context.Background(), "query", 5, time.Second)
	require.Error(t, err)
	var searchErr *pipelineerr.EvidenceSearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Contains(t, searchErr.Err.Error(), "quota exceeded")
}

func TestHTTPClient_Search_WrapsNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "testkey", "engine-1")
	_, err := client.Search(context.Background(), "query", 5, time.Second)
	require.Error(t, err)
	var searchErr *pipelineerr.EvidenceSearchError
	require.ErrorAs(t, err, &searchErr)
}

func TestHTTPClient_Search_EmptyItemsReturnsEmptySliceNoError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "testkey", "engine-1")
	hits, err := client.Search(context.Background(), "query", 5, time.Second)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
