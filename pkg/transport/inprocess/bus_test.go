package inprocess

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-relay/pkg/transport"
)

type sink struct {
	mu   sync.Mutex
	msgs []transport.Message
}

func (s *sink) handle(m transport.Message) {
	s.mu.Lock()
	s.msgs = append(s.msgs, m)
	s.mu.Unlock()
}

func (s *sink) payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, string(m.Payload))
	}
	return out
}

func TestBus_HierarchicalDelivery(t *testing.T) {
	bus := NewBus(nil)
	var root, a, ab, ac sink

	bus.Subscribe(transport.RootScope, root.handle)
	bus.Subscribe(transport.MustParseScope("/a/"), a.handle)
	bus.Subscribe(transport.MustParseScope("/a/b/"), ab.handle)
	bus.Subscribe(transport.MustParseScope("/a/c/"), ac.handle)

	bus.Publish(transport.MustParseScope("/a/b/"), []byte("hello"))
	bus.Publish(transport.MustParseScope("/a/"), []byte("up"))

	assert.Equal(t, []string{"hello", "up"}, root.payloads())
	assert.Equal(t, []string{"hello", "up"}, a.payloads())
	assert.Equal(t, []string{"hello"}, ab.payloads())
	assert.Empty(t, ac.payloads())
}

func TestBus_MessageCarriesScope(t *testing.T) {
	bus := NewBus(nil)
	var s sink
	bus.Subscribe(transport.RootScope, s.handle)

	bus.Publish(transport.MustParseScope("/x/y/"), []byte("p"))

	require.Len(t, s.msgs, 1)
	assert.Equal(t, "/x/y/", s.msgs[0].Scope.String())
	assert.False(t, s.msgs[0].Timestamp.IsZero())
}

func TestListenerInformer(t *testing.T) {
	bus := NewBus(nil)
	scope := transport.MustParseScope("/robot/")

	l := NewListener(bus, scope)
	inf := NewInformer(bus, transport.MustParseScope("/robot/arm/"))

	got := make(chan transport.Message, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Listen(ctx, func(m transport.Message) {
			select {
			case got <- m:
			default:
			}
		})
	}()

	// Publish until the subscription is in place.
	require.Eventually(t, func() bool {
		_ = inf.Publish(context.Background(), []byte("moved"))
		select {
		case m := <-got:
			return string(m.Payload) == "moved"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
	assert.NoError(t, l.Close())
	assert.NoError(t, inf.Close())
	assert.Zero(t, bus.Scopes(), "scope should be dropped after its last listener left")
}

func TestInformer_CancelledContext(t *testing.T) {
	inf := NewInformer(NewBus(nil), transport.RootScope)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, inf.Publish(ctx, []byte("x")), context.Canceled)
}

func TestBus_UnsubscribeDropsIdleScopes(t *testing.T) {
	bus := NewBus(nil)
	scope := transport.MustParseScope("/short/lived/")
	var first, second sink

	c1 := bus.Subscribe(scope, first.handle)
	c2 := bus.Subscribe(scope, second.handle)
	assert.Equal(t, 1, bus.Scopes())

	bus.Unsubscribe(scope, c1)
	assert.Equal(t, 1, bus.Scopes())
	bus.Publish(scope, []byte("still here"))
	assert.Empty(t, first.payloads())
	assert.Equal(t, []string{"still here"}, second.payloads())

	bus.Unsubscribe(scope, c2)
	assert.Zero(t, bus.Scopes())

	// Unsubscribing twice is harmless.
	bus.Unsubscribe(scope, c2)
	assert.Zero(t, bus.Scopes())
}

func TestBus_ManyShortLivedScopes(t *testing.T) {
	bus := NewBus(nil)
	for i := 0; i < 100; i++ {
		scope := transport.MustParseScope(fmt.Sprintf("/job/%d/", i))
		conn := bus.Subscribe(scope, func(transport.Message) {})
		bus.Unsubscribe(scope, conn)
	}
	assert.Zero(t, bus.Scopes())
}
