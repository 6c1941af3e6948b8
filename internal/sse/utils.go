package sse

import "net/http"

// SetSSEHeaders sets the response headers an event-stream reply requires,
// without overwriting any the caller already set.
func SetSSEHeaders(header http.Header) {
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "text/event-stream; charset=utf-8")
	}
	if header.Get("Cache-Control") == "" {
		header.Set("Cache-Control", "no-cache")
	}
	if header.Get("Connection") == "" {
		header.Set("Connection", "keep-alive")
	}
}
