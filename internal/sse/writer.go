package sse

import (
	"context"
	"fmt"
	"net/http"
)

// WithSSE drains ch to response as SSE-encoded messages until ch closes or
// ctx is cancelled, flushing after every message. It does not close ch.
func WithSSE(ctx context.Context, response http.ResponseWriter, ch <-chan *Message) error {
	SetSSEHeaders(response.Header())

	flusher, ok := response.(http.Flusher)
	if !ok {
		return fmt.Errorf("sse: response writer does not support flushing")
	}

	enc := NewEncoder()
	response.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, open := <-ch:
			if !open {
				return nil
			}
			wire, err := enc.Encode(msg)
			if err != nil {
				return err
			}
			if _, err := response.Write(wire); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}
