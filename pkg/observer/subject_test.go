package observer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects notifications.
type recorder struct {
	mu      sync.Mutex
	history []int
}

func (r *recorder) update(v int) {
	r.mu.Lock()
	r.history = append(r.history, v)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.history...)
}

func TestSubject_NoSubscribers(t *testing.T) {
	s := NewSubject[int](nil)
	assert.NotPanics(t, func() { s.Notify(1) })
	assert.Equal(t, 0, s.Len())
}

func TestSubject_Connect(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	conn := s.Connect(r.update)
	assert.True(t, conn.Connected())
	assert.Empty(t, r.snapshot())

	s.Notify(1)
	s.Notify(2)
	assert.Equal(t, []int{1, 2}, r.snapshot())
}

func TestSubject_DeliveryOrder(t *testing.T) {
	s := NewSubject[int](nil)
	var order []string
	s.Connect(func(int) { order = append(order, "first") })
	s.Connect(func(int) { order = append(order, "second") })

	s.Notify(0)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSubject_DisconnectConnection(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	conn := s.Connect(r.update)
	s.Notify(1)
	conn.Disconnect()
	assert.False(t, conn.Connected())

	s.Notify(2)
	assert.Equal(t, []int{1}, r.snapshot())
	assert.Equal(t, 0, s.Len())

	assert.NotPanics(t, conn.Disconnect)
}

func TestSubject_DisconnectViaSubject(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	conn := s.Connect(r.update)
	s.Notify(1)
	s.Disconnect(conn)
	assert.False(t, conn.Connected())

	s.Notify(2)
	assert.Equal(t, []int{1}, r.snapshot())
}

func TestSubject_Close(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	conn := s.Connect(r.update)
	s.Notify(1)
	s.Close()

	assert.False(t, conn.Connected())
	s.Notify(2)
	assert.Equal(t, []int{1}, r.snapshot())
}

func TestSubject_PanickingSubscriber(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	s.Connect(func(int) { panic("boom") })
	s.Connect(r.update)

	require.NotPanics(t, func() { s.Notify(3) })
	assert.Equal(t, []int{3}, r.snapshot())
}

func TestSubject_DisconnectDuringNotify(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder

	var second *Connection
	s.Connect(func(int) { second.Disconnect() })
	second = s.Connect(r.update)

	s.Notify(1)
	assert.Empty(t, r.snapshot(), "subscriber disconnected mid-notify should be skipped")
}

func TestSubject_Concurrent(t *testing.T) {
	s := NewSubject[int](nil)
	var r recorder
	s.Connect(r.update)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Notify(i)
				c := s.Connect(func(int) {})
				c.Disconnect()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, r.snapshot(), 800)
	assert.Equal(t, 1, s.Len())
}

func TestComposite(t *testing.T) {
	a, b, c := NewSubject[int](nil), NewSubject[int](nil), NewSubject[int](nil)
	composite := NewComposite[int](nil, a, b, c)
	var r recorder
	composite.Connect(r.update)

	a.Notify(1)
	b.Notify(2)
	c.Notify(3)
	assert.Equal(t, []int{1, 2, 3}, r.snapshot())

	composite.Close()
	a.Notify(4)
	assert.Equal(t, []int{1, 2, 3}, r.snapshot())
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, c.Len())
}
