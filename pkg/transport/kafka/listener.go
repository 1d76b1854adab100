package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

// Listener consumes the topic of one scope as a member of a consumer group.
type Listener struct {
	group  sarama.ConsumerGroup
	scope  transport.Scope
	topic  string
	logger *zap.Logger
}

var _ transport.Listener = (*Listener)(nil)

// NewListener joins the consumer group for scope.
func NewListener(cfg settings.Kafka, scope transport.Scope, opts map[string]string, logger *zap.Logger) (*Listener, error) {
	o := ResolveOptions(cfg, opts)
	group, err := sarama.NewConsumerGroup(o.Brokers, o.Group, newSaramaConfig(cfg, o))
	if err != nil {
		return nil, errors.Wrapf(err, "kafka consumer group %s", o.Group)
	}
	return NewListenerWithGroup(group, scope, o, logger), nil
}

// NewListenerWithGroup wraps an existing consumer group. The listener owns
// it and drains its error channel until Close.
func NewListenerWithGroup(group sarama.ConsumerGroup, scope transport.Scope, o Options, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Listener{
		group:  group,
		scope:  scope,
		topic:  o.Topic(scope),
		logger: logger.With(zap.String("topic", o.Topic(scope)), zap.String("group", o.Group)),
	}
	go l.drainErrors()
	return l
}

func (l *Listener) drainErrors() {
	for err := range l.group.Errors() {
		l.logger.Warn("consumer group error", zap.Error(err))
	}
}

// Listen consumes until ctx is done. Rebalances restart the session.
func (l *Listener) Listen(ctx context.Context, handler transport.Handler) error {
	h := &claimHandler{scope: l.scope, handler: handler, logger: l.logger}
	for {
		if err := l.group.Consume(ctx, []string{l.topic}, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errors.Wrap(err, "kafka consume")
		}
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Debug("consumer group rebalanced")
	}
}

// Close leaves the consumer group.
func (l *Listener) Close() error {
	return l.group.Close()
}

// claimHandler adapts sarama claims to a transport.Handler.
type claimHandler struct {
	scope   transport.Scope
	handler transport.Handler
	logger  *zap.Logger
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if m, ok := h.toMessage(msg); ok {
				h.handler(m)
			}
			sess.MarkMessage(msg, "")
		case <-sess.Context().Done():
			return nil
		}
	}
}

// toMessage converts msg and reports whether it belongs to the listener's
// scope or one below it.
func (h *claimHandler) toMessage(msg *sarama.ConsumerMessage) (transport.Message, bool) {
	scope := h.scope
	for _, header := range msg.Headers {
		if header != nil && string(header.Key) == scopeHeader {
			if s, err := transport.ParseScope(string(header.Value)); err == nil {
				scope = s
			}
			break
		}
	}

	if !scope.Equal(h.scope) && !scope.IsSubScopeOf(h.scope) {
		if h.logger != nil {
			h.logger.Debug("dropping message from foreign scope", zap.String("scope", scope.String()))
		}
		return transport.Message{}, false
	}

	return transport.Message{
		Scope:     scope,
		Payload:   msg.Value,
		Timestamp: msg.Timestamp,
	}, true
}
