package observer

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Subscriber receives the data passed to Notify.
type Subscriber[T any] func(data T)

// Connection is the handle returned by Connect.
type Connection struct {
	id         uint64
	connected  atomic.Bool
	disconnect func(id uint64)
}

// Connected reports whether the subscriber still receives notifications.
func (c *Connection) Connected() bool {
	return c != nil && c.connected.Load()
}

// Disconnect stops notifications for this connection. Safe to call more than once.
func (c *Connection) Disconnect() {
	if c == nil || !c.connected.CompareAndSwap(true, false) {
		return
	}
	c.disconnect(c.id)
}

type subscription[T any] struct {
	conn *Connection
	fn   Subscriber[T]
}

// Subject is a synchronous one-to-many signal.
// Notify calls every connected subscriber, in connection order, on the
// caller's goroutine. It is safe for concurrent use.
type Subject[T any] struct {
	mu     sync.RWMutex
	subs   []subscription[T]
	nextID uint64
	logger *zap.Logger
}

// NewSubject creates a Subject. A nil logger disables panic reporting.
func NewSubject[T any](logger *zap.Logger) *Subject[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subject[T]{logger: logger}
}

// Connect registers fn and returns its connection.
func (s *Subject[T]) Connect(fn Subscriber[T]) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	conn := &Connection{id: s.nextID, disconnect: s.remove}
	conn.connected.Store(true)
	s.subs = append(s.subs, subscription[T]{conn: conn, fn: fn})
	return conn
}

// Disconnect is a convenience for conn.Disconnect().
func (s *Subject[T]) Disconnect(conn *Connection) {
	conn.Disconnect()
}

// Notify delivers data to a snapshot of the connected subscribers.
// A panicking subscriber is recovered and the rest still run.
func (s *Subject[T]) Notify(data T) {
	s.mu.RLock()
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		if !sub.conn.Connected() {
			continue
		}
		s.safeCall(sub.fn, data)
	}
}

// Len returns the number of connected subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close disconnects every subscriber.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.conn.connected.Store(false)
	}
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.conn.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Subject[T]) safeCall(fn Subscriber[T], data T) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn(data)
}
