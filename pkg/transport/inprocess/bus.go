package inprocess

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/observer"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

// Bus routes messages between participants of the same process.
// A message published on /a/b/ reaches listeners of /, /a/ and /a/b/.
type Bus struct {
	mu       sync.Mutex
	subjects map[string]*observer.Subject[transport.Message]
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subjects: make(map[string]*observer.Subject[transport.Message]),
		logger:   logger,
	}
}

// subject returns the subject for scope, or nil when nobody listens there.
func (b *Bus) subject(scope transport.Scope) *observer.Subject[transport.Message] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subjects[scope.String()]
}

// Publish delivers payload to every listener on scope or a super-scope.
func (b *Bus) Publish(scope transport.Scope, payload []byte) {
	msg := transport.Message{
		Scope:     scope,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, s := range scope.SuperScopes(true) {
		if subject := b.subject(s); subject != nil {
			subject.Notify(msg)
		}
	}
}

// Subscribe connects handler to scope and everything below it.
// Release the connection with Unsubscribe so idle scopes are dropped.
func (b *Bus) Subscribe(scope transport.Scope, handler transport.Handler) *observer.Connection {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := scope.String()
	s, ok := b.subjects[key]
	if !ok {
		s = observer.NewSubject[transport.Message](b.logger)
		b.subjects[key] = s
	}
	return s.Connect(observer.Subscriber[transport.Message](handler))
}

// Unsubscribe disconnects conn and forgets scope once nobody listens on it.
func (b *Bus) Unsubscribe(scope transport.Scope, conn *observer.Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn.Disconnect()
	key := scope.String()
	if s, ok := b.subjects[key]; ok && s.Len() == 0 {
		delete(b.subjects, key)
	}
}

// Scopes returns the number of scopes with at least one subscriber.
func (b *Bus) Scopes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subjects)
}

// Listener listens on one scope of a Bus.
type Listener struct {
	bus   *Bus
	scope transport.Scope
}

var _ transport.Listener = (*Listener)(nil)

// NewListener binds a listener to scope.
func NewListener(bus *Bus, scope transport.Scope) *Listener {
	return &Listener{bus: bus, scope: scope}
}

// Listen delivers messages until ctx is done.
func (l *Listener) Listen(ctx context.Context, handler transport.Handler) error {
	conn := l.bus.Subscribe(l.scope, handler)
	defer l.bus.Unsubscribe(l.scope, conn)

	<-ctx.Done()
	return nil
}

// Close is a no-op; Listen releases its subscription when ctx ends.
func (l *Listener) Close() error { return nil }

// Informer publishes on one scope of a Bus.
type Informer struct {
	bus   *Bus
	scope transport.Scope
}

var _ transport.Informer = (*Informer)(nil)

// NewInformer binds an informer to scope.
func NewInformer(bus *Bus, scope transport.Scope) *Informer {
	return &Informer{bus: bus, scope: scope}
}

// Publish delivers payload synchronously to the current listeners.
func (i *Informer) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.bus.Publish(i.scope, payload)
	return nil
}

// Close is a no-op.
func (i *Informer) Close() error { return nil }
