package sse

import (
	"bytes"
	"sync"
)

var messagePool = sync.Pool{
	New: func() any { return &Message{} },
}

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// GetMessage returns a zeroed Message from the pool.
func GetMessage() *Message {
	return messagePool.Get().(*Message)
}

// ReleaseMessage resets msg and returns it to the pool.
func ReleaseMessage(msg *Message) {
	if msg == nil {
		return
	}
	msg.Event = ""
	msg.Data = msg.Data[:0]
	messagePool.Put(msg)
}

// GetBuffer returns an empty buffer from the pool, for building Data payloads
// without a per-event allocation.
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// ReleaseBuffer resets buf and returns it to the pool.
func ReleaseBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
