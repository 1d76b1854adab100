package observer

import "go.uber.org/zap"

// Composite is a Subject that re-notifies everything its sources notify.
type Composite[T any] struct {
	*Subject[T]
	sources []*Connection
}

// NewComposite connects to every source. Close releases those connections.
func NewComposite[T any](logger *zap.Logger, sources ...*Subject[T]) *Composite[T] {
	c := &Composite[T]{Subject: NewSubject[T](logger)}
	for _, src := range sources {
		c.sources = append(c.sources, src.Connect(c.Notify))
	}
	return c
}

// Close disconnects from the sources and from every subscriber.
func (c *Composite[T]) Close() {
	for _, conn := range c.sources {
		conn.Disconnect()
	}
	c.Subject.Close()
}
