package participant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

func newFactory(t *testing.T) *Factory {
	t.Helper()
	return NewFactory(settings.Default(), WithLogger(zaptest.NewLogger(t)))
}

func TestFactory_DefaultConfig(t *testing.T) {
	f := newFactory(t)
	assert.Equal(t, []string{TransportInProcess}, f.DefaultConfig().Enabled())
}

func TestFactory_InProcessRoundTrip(t *testing.T) {
	f := newFactory(t)

	l, err := f.CreateListener("/robot/")
	require.NoError(t, err)
	assert.Equal(t, "/robot/", l.Scope().String())
	assert.Equal(t, []string{TransportInProcess}, l.Transports())

	inf, err := f.CreateInformer("inprocess:/robot/arm")
	require.NoError(t, err)
	assert.Equal(t, "/robot/arm/", inf.Scope().String())

	var (
		mu  sync.Mutex
		got []transport.Message
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Listen(ctx, func(m transport.Message) {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		_ = inf.Publish(context.Background(), []byte("moved"))
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}

	mu.Lock()
	assert.Equal(t, "/robot/arm/", got[0].Scope.String())
	assert.Equal(t, "moved", string(got[0].Payload))
	mu.Unlock()

	assert.NoError(t, l.Close())
	assert.NoError(t, inf.Close())
}

func TestFactory_SharedBus(t *testing.T) {
	f := newFactory(t)
	other := NewFactory(settings.Default(), WithBus(f.Bus()))
	assert.Same(t, f.Bus(), other.Bus())
}

func TestFactory_Errors(t *testing.T) {
	noDefaults := settings.Default()
	noDefaults.Transport.Default = nil

	tests := []struct {
		name    string
		cfg     *settings.Config
		uri     string
		wantErr error
	}{
		{"invalid uri", settings.Default(), "/bad scope/", transport.ErrInvalidURI},
		{"unknown scheme", settings.Default(), "mqtt:/a/", ErrUnknownTransport},
		{"no transport", noDefaults, "/a/", ErrNoTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory(tt.cfg)

			_, err := f.CreateListener(tt.uri)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = f.CreateInformer(tt.uri)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFactory_TransportConnectFailure(t *testing.T) {
	cfg := settings.Default()
	cfg.Redis.DialTimeout = 1
	cfg.Redis.MaxRetries = -1
	f := NewFactory(cfg)

	_, err := f.CreateInformer("redis://127.0.0.1:1/a/")
	assert.Error(t, err)
}

// =============================================================================
// Fan-in and fan-out
// =============================================================================

type stubListener struct {
	err    error
	closed bool
}

func (s *stubListener) Listen(ctx context.Context, _ transport.Handler) error {
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func (s *stubListener) Close() error {
	s.closed = true
	return nil
}

type stubInformer struct {
	err      error
	payloads [][]byte
}

func (s *stubInformer) Publish(_ context.Context, p []byte) error {
	s.payloads = append(s.payloads, p)
	return s.err
}

func (s *stubInformer) Close() error { return nil }

func TestListener_FailureCancelsOthers(t *testing.T) {
	boom := assert.AnError
	healthy := &stubListener{}
	l := &Listener{
		scope:     transport.RootScope,
		names:     []string{"a", "b"},
		listeners: []transport.Listener{healthy, &stubListener{err: boom}},
		logger:    zaptest.NewLogger(t),
	}

	err := l.Listen(context.Background(), func(transport.Message) {})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, l.Close())
	assert.True(t, healthy.closed)
}

func TestInformer_PublishesToAll(t *testing.T) {
	a := &stubInformer{}
	b := &stubInformer{err: assert.AnError}
	c := &stubInformer{}
	inf := &Informer{scope: transport.RootScope, informers: []transport.Informer{a, b, c}}

	err := inf.Publish(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, a.payloads, 1)
	assert.Len(t, c.payloads, 1)
}
