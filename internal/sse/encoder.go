package sse

import "bytes"

// Encoder renders a Message into the SSE wire format. It is stateless and
// safe for concurrent use.
type Encoder struct{}

// NewEncoder constructs an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode writes the event line (if Event is set), one data line per line of
// Data, and the terminating blank line.
func (e *Encoder) Encode(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	if msg.Event != "" {
		buf.WriteString("event: ")
		buf.WriteString(msg.Event)
		buf.WriteByte('\n')
	}
	if len(msg.Data) == 0 {
		buf.WriteString("data: \n")
	} else {
		for _, line := range bytes.Split(msg.Data, []byte("\n")) {
			buf.WriteString("data: ")
			buf.Write(line)
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
