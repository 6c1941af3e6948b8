package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSSE_DrainsChannelUntilClose(t *testing.T) {
	rec := httptest.NewRecorder()
	ch := make(chan *Message, 2)
	ch <- &Message{Event: "progress", Data: []byte(`{"progress":10}`)}
	ch <- &Message{Event: "end", Data: []byte(`{"progress":100}`)}
	close(ch)

	err := WithSSE(context.Background(), rec, ch)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "event: progress\ndata: {\"progress\":10}\n\n"))
	assert.True(t, strings.Contains(body, "event: end\ndata: {\"progress\":100}\n\n"))
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestWithSSE_ContextCancellationStopsEarly(t *testing.T) {
	rec := httptest.NewRecorder()
	ch := make(chan *Message)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- WithSSE(ctx, rec, ch) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("WithSSE did not return after context cancellation")
	}
}

type nonFlushingWriter struct {
	http.ResponseWriter
	header http.Header
}

func (n *nonFlushingWriter) Header() http.Header { return n.header }
func (n *nonFlushingWriter) Write(b []byte) (int, error) { return len(b), nil }
func (n *nonFlushingWriter) WriteHeader(int)             {}

func TestWithSSE_NonFlusherReturnsError(t *testing.T) {
	w := &nonFlushingWriter{header: make(http.Header)}
	ch := make(chan *Message)
	close(ch)

	err := WithSSE(context.Background(), w, ch)
	assert.Error(t, err)
}
