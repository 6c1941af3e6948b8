package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Complete_ReturnsFirstChoiceContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, "hello", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "sk-test")
	text, err := transport.Complete(context.Background(), Params{
		Model: "gpt-4o-mini", Prompt: "hello", Timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
}

func TestHTTPTransport_Complete_UnauthorizedIsNonRetriable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`invalid api key`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "bad-key")
	_, err := transport.Complete(context.Background(), Params{Model: "m", Prompt: "p", Timeout: time.Second})
	require.Error(t, err)
	var nonRetriable *NonRetriableError
	require.ErrorAs(t, err, &nonRetriable)
}

func TestHTTPTransport_Complete_ServerErrorIsRetriable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`service unavailable`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "key")
	_, err := transport.Complete(context.Background(), Params{Model: "m", Prompt: "p", Timeout: time.Second})
	require.Error(t, err)
	var nonRetriable *NonRetriableError
	assert.False(t, errors.As(err, &nonRetriable))
}

func TestHTTPTransport_Complete_ProviderErrorFieldSurfacesAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"context length exceeded"}}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "key")
	_, err := transport.Complete(context.Background(), Params{Model: "m", Prompt: "p", Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context length exceeded")
}

func TestHTTPTransport_Complete_NoChoicesReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "key")
	_, err := transport.Complete(context.Background(), Params{Model: "m", Prompt: "p", Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestHTTPTransport_Complete_ZeroTimeoutDoesNotExpireImmediately(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "key")
	text, err := transport.Complete(context.Background(), Params{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
