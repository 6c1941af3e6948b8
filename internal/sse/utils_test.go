package sse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetSSEHeaders_SetsDefaults(t *testing.T) {
	h := make(http.Header)
	SetSSEHeaders(h)
	assert.Equal(t, "text/event-stream; charset=utf-8", h.Get("Content-Type"))
	assert.Equal(t, "no-cache", h.Get("Cache-Control"))
	assert.Equal(t, "keep-alive", h.Get("Connection"))
}

func TestSetSSEHeaders_DoesNotOverwriteExisting(t *testing.T) {
	h := make(http.Header)
	h.Set("Cache-Control", "max-age=10")
	SetSSEHeaders(h)
	assert.Equal(t, "max-age=10", h.Get("Cache-Control"))
}
