package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/gammazero/deque"
)

var (
	_ Queue[int]    = (*Synchronized[int])(nil)
	_ Blocking[int] = (*Synchronized[int])(nil)
)

// maxPrealloc bounds the ring allocated up front so that a huge capacity
// does not reserve memory that is never used.
const maxPrealloc = 1024

// ErrClosed is returned by PopContext when the queue is closed and drained.
var ErrClosed = errors.New("queue: closed")

// Synchronized is a bounded, blocking multiple-producer multiple-consumer queue.
//
// Behavior:
//   - Push never blocks and never fails. When the queue is full the oldest
//     item is dropped to make room, so under overload only the most recent
//     Capacity() items survive.
//   - A capacity of zero accepts and discards every item.
//   - Pop parks the caller while the queue is empty and open. Items still
//     buffered after Close are handed out; only an empty, closed queue makes
//     Pop report false.
type Synchronized[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      deque.Deque[T]
	capacity int
	evicted  uint64
	closed   bool
}

// NewSynchronized creates a queue holding at most capacity items.
// Negative capacities are treated as zero.
func NewSynchronized[T any](capacity int) *Synchronized[T] {
	if capacity < 0 {
		capacity = 0
	}

	q := &Synchronized[T]{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	if capacity > 0 {
		q.buf.SetBaseCap(min(capacity, maxPrealloc))
	}
	return q
}

// Push appends item, evicting the oldest item first if the queue is full,
// and wakes one waiting consumer.
func (q *Synchronized[T]) Push(item T) {
	if q.capacity == 0 {
		return
	}

	q.mu.Lock()
	if q.buf.Len() >= q.capacity {
		q.buf.PopFront()
		q.evicted++
	}
	q.buf.PushBack(item)
	q.mu.Unlock()

	q.cond.Signal()
}

// TryPop removes and returns the front item. It never blocks.
func (q *Synchronized[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.buf.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.buf.PopFront(), true
}

// Pop removes and returns the front item, waiting while the queue is empty.
// Returns (zero, false) once the queue is closed and empty.
func (q *Synchronized[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.buf.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.buf.PopFront(), true
}

// PopContext is Pop bounded by ctx. It returns ErrClosed when the queue is
// closed and empty, or ctx.Err() when ctx ends before an item arrives.
func (q *Synchronized[T]) PopContext(ctx context.Context) (T, error) {
	var zero T

	// Waking under the lock guarantees the waiter is either parked already
	// or will see ctx.Err() on its next check.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Len() == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.cond.Wait()
	}
	if q.buf.Len() == 0 {
		return zero, ErrClosed
	}
	return q.buf.PopFront(), nil
}

// IsEmpty reports whether the queue is empty.
// The answer may be stale by the time the caller acts on it.
func (q *Synchronized[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Len() == 0
}

// Len returns the number of buffered items.
func (q *Synchronized[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Len()
}

// Capacity returns maximum queue size.
func (q *Synchronized[T]) Capacity() int { return q.capacity }

// Evicted returns how many items were dropped to make room for newer ones.
func (q *Synchronized[T]) Evicted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.evicted
}

// Closed reports whether Close has been called.
func (q *Synchronized[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed and wakes every goroutine parked in Pop.
// Pushes after Close are still buffered and can be drained.
func (q *Synchronized[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}
