// File: internal/infra/ws/conn.go
package ws

import (
	"sync"
	"time"
)

const writeWait = 10 * time.Second

// jsonWriter is the write surface of gorilla's *websocket.Conn.
type jsonWriter interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// safeConn serializes writes to one websocket. gorilla supports only a single
// concurrent writer, while job events from the hub and ping/ack replies from
// the read loop target the same connection; every write also carries a
// deadline so a stalled client cannot block a publishing goroutine.
type safeConn struct {
	mu sync.Mutex
	c  jsonWriter
}

var _ Conn = (*safeConn)(nil)

func newSafeConn(c jsonWriter) *safeConn { return &safeConn{c: c} }

func (s *safeConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.c.SetWriteDeadline(time.Now().Add(writeWait))
	return s.c.WriteJSON(v)
}

func (s *safeConn) Close() error { return s.c.Close() }
