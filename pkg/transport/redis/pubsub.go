package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

// Informer publishes on the channel named after its scope.
type Informer struct {
	client *redisV9.Client
	scope  transport.Scope
}

var _ transport.Informer = (*Informer)(nil)

// NewInformer connects a publisher for scope.
func NewInformer(cfg settings.Redis, scope transport.Scope, opts map[string]string) (*Informer, error) {
	client, err := connect(cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewInformerWithClient(client, scope), nil
}

// NewInformerWithClient wraps client. The informer owns it.
func NewInformerWithClient(client *redisV9.Client, scope transport.Scope) *Informer {
	return &Informer{client: client, scope: scope}
}

// Publish sends payload on the scope channel.
func (i *Informer) Publish(ctx context.Context, payload []byte) error {
	if err := i.client.Publish(ctx, i.scope.String(), payload).Err(); err != nil {
		return errors.Wrapf(err, "publish %s", i.scope)
	}
	return nil
}

func (i *Informer) Close() error {
	return i.client.Close()
}

// Listener pattern-subscribes to its scope channel and every channel
// below it.
type Listener struct {
	client *redisV9.Client
	scope  transport.Scope
	logger *zap.Logger
}

var _ transport.Listener = (*Listener)(nil)

// NewListener connects a subscriber for scope.
func NewListener(cfg settings.Redis, scope transport.Scope, opts map[string]string, logger *zap.Logger) (*Listener, error) {
	client, err := connect(cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewListenerWithClient(client, scope, logger), nil
}

// NewListenerWithClient wraps client. The listener owns it.
func NewListenerWithClient(client *redisV9.Client, scope transport.Scope, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		client: client,
		scope:  scope,
		logger: logger.With(zap.String("scope", scope.String())),
	}
}

// Pattern is the PSUBSCRIBE pattern covering scope and its sub-scopes.
func Pattern(scope transport.Scope) string {
	return scope.String() + "*"
}

// Listen delivers messages until ctx is done.
func (l *Listener) Listen(ctx context.Context, handler transport.Handler) error {
	pubsub := l.client.PSubscribe(ctx, Pattern(l.scope))
	defer pubsub.Close()

	// Wait for the subscription confirmation so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrapf(err, "psubscribe %s", l.scope)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handler(l.toMessage(msg))
		}
	}
}

func (l *Listener) Close() error {
	return l.client.Close()
}

func (l *Listener) toMessage(msg *redisV9.Message) transport.Message {
	scope, err := transport.ParseScope(msg.Channel)
	if err != nil {
		l.logger.Debug("unparsable channel", zap.String("channel", msg.Channel), zap.Error(err))
		scope = l.scope
	}
	return transport.Message{
		Scope:     scope,
		Payload:   []byte(msg.Payload),
		Timestamp: time.Now(),
	}
}
