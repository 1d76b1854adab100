package queue

import "context"

// Queue is a generic interface for bounded FIFO queues.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// A full queue makes room by dropping its oldest item, so Push never fails.
	Push(item T)

	// TryPop removes and returns the front item without blocking.
	// Returns (item, true) if successful, (zero, false) if the queue is empty.
	TryPop() (T, bool)

	// IsEmpty reports whether the queue holds no items.
	IsEmpty() bool

	// Len returns the number of buffered items.
	Len() int

	// Capacity returns the maximum number of buffered items.
	Capacity() int
}

// Blocking is a Queue whose consumers can wait for items.
type Blocking[T any] interface {
	Queue[T]

	// Pop waits until an item is available or the queue is closed.
	// Returns (zero, false) only when the queue is closed and empty.
	Pop() (T, bool)

	// PopContext is Pop that also gives up when ctx is done.
	PopContext(ctx context.Context) (T, error)

	// Close wakes every waiting consumer. It is safe to call more than once.
	Close()
}
