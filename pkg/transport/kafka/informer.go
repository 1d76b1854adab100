package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

// Informer publishes on a scope through a sarama SyncProducer.
type Informer struct {
	producer sarama.SyncProducer
	scope    transport.Scope
	topics   []string
}

var _ transport.Informer = (*Informer)(nil)

// NewInformer connects a producer for scope.
func NewInformer(cfg settings.Kafka, scope transport.Scope, opts map[string]string) (*Informer, error) {
	o := ResolveOptions(cfg, opts)
	producer, err := sarama.NewSyncProducer(o.Brokers, newSaramaConfig(cfg, o))
	if err != nil {
		return nil, errors.Wrapf(err, "kafka producer %v", o.Brokers)
	}
	return NewInformerWithProducer(producer, scope, o), nil
}

// NewInformerWithProducer wraps an existing producer. The informer owns it.
func NewInformerWithProducer(producer sarama.SyncProducer, scope transport.Scope, o Options) *Informer {
	supers := scope.SuperScopes(true)
	topics := make([]string, 0, len(supers))
	for _, s := range supers {
		topics = append(topics, o.Topic(s))
	}
	return &Informer{producer: producer, scope: scope, topics: topics}
}

// Publish writes payload to the topic of the scope and of every super-scope.
func (i *Informer) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(i.topics))
	for _, topic := range i.topics {
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte(scopeHeader), Value: []byte(i.scope.String())},
			},
		})
	}
	if err := i.producer.SendMessages(msgs); err != nil {
		return errors.Wrapf(err, "publish %s", i.scope)
	}
	return nil
}

// Close closes the producer.
func (i *Informer) Close() error {
	return i.producer.Close()
}
