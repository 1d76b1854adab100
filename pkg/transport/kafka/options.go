package kafka

import (
	"net"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

const (
	defaultRootTopic = "relay"
	defaultGroup     = "relay"
	defaultClientID  = "relay"

	// scopeHeader carries the publishing scope, since one message is
	// written to the topic of every super-scope.
	scopeHeader = "scope"
)

// Options are the resolved connection parameters of one participant.
type Options struct {
	Brokers   []string
	Group     string
	ClientID  string
	RootTopic string
}

// ResolveOptions merges URI options over the Kafka settings. A host (and
// optional port) in the URI replaces the configured broker list.
func ResolveOptions(cfg settings.Kafka, opts map[string]string) Options {
	o := Options{
		Brokers:   cfg.Brokers,
		Group:     cfg.Group,
		ClientID:  cfg.ClientID,
		RootTopic: defaultRootTopic,
	}

	if host := opts[transport.OptionHost]; host != "" {
		port := opts[transport.OptionPort]
		if port == "" {
			port = "9092"
		}
		o.Brokers = []string{net.JoinHostPort(host, port)}
	}
	if v := opts["group"]; v != "" {
		o.Group = v
	}
	if v := opts["client_id"]; v != "" {
		o.ClientID = v
	}
	if v := opts["topic"]; v != "" {
		o.RootTopic = v
	}

	if o.Group == "" {
		o.Group = defaultGroup
	}
	if o.ClientID == "" {
		o.ClientID = defaultClientID
	}
	return o
}

// topicEscaper keeps component names free of the topic separator.
// "_" is doubled first so "_d" only ever stands for an escaped ".".
var topicEscaper = strings.NewReplacer("_", "__", ".", "_d")

// Topic maps a scope to a topic name. The root scope is the root topic and
// every other scope lives below it: /a/b/ becomes "<root>.a.b". Dots and
// underscores inside components are escaped so distinct scopes never share
// a topic.
func (o Options) Topic(scope transport.Scope) string {
	if scope.IsRoot() {
		return o.RootTopic
	}

	parts := make([]string, 0, len(scope.Components())+1)
	parts = append(parts, o.RootTopic)
	for _, c := range scope.Components() {
		parts = append(parts, topicEscaper.Replace(c))
	}
	return strings.Join(parts, ".")
}

// newSaramaConfig translates the Kafka settings into a sarama config.
func newSaramaConfig(cfg settings.Kafka, o Options) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = o.ClientID

	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	if cfg.MaxRetries > 0 {
		sc.Producer.Retry.Max = cfg.MaxRetries
	}
	if cfg.RetryBackoff > 0 {
		sc.Producer.Retry.Backoff = time.Duration(cfg.RetryBackoff) * time.Millisecond
	}
	if cfg.MaxMessageBytes > 0 {
		sc.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	}
	if cfg.FlushFrequency > 0 {
		sc.Producer.Flush.Frequency = time.Duration(cfg.FlushFrequency) * time.Millisecond
	}
	if cfg.FlushBytes > 0 {
		sc.Producer.Flush.Bytes = cfg.FlushBytes
	}
	if cfg.Timeout > 0 {
		timeout := time.Duration(cfg.Timeout) * time.Second
		sc.Net.DialTimeout = timeout
		sc.Producer.Timeout = timeout
	}

	sc.Consumer.Return.Errors = true
	if cfg.OffsetOldest {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	return sc
}
