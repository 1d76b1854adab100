package participant

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
	"github.com/huynhanx03/go-relay/pkg/transport/inprocess"
	"github.com/huynhanx03/go-relay/pkg/transport/kafka"
	"github.com/huynhanx03/go-relay/pkg/transport/redis"
)

// Transport names accepted as URI schemes and in transport.default.
const (
	TransportInProcess = "inprocess"
	TransportKafka     = "kafka"
	TransportRedis     = "redis"
)

var (
	ErrNoTransport      = errors.New("participant: no transport enabled")
	ErrUnknownTransport = errors.New("participant: unknown transport")
)

// Factory creates listeners and informers from URIs.
type Factory struct {
	cfg    *settings.Config
	bus    *inprocess.Bus
	logger *zap.Logger
}

type options struct {
	bus    *inprocess.Bus
	logger *zap.Logger
}

// Option configures a Factory.
type Option func(*options)

// WithBus shares an existing in-process bus.
func WithBus(bus *inprocess.Bus) Option {
	return func(o *options) { o.bus = bus }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewFactory builds a factory over cfg.
func NewFactory(cfg *settings.Config, opts ...Option) *Factory {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.bus == nil {
		o.bus = inprocess.NewBus(o.logger)
	}
	return &Factory{cfg: cfg, bus: o.bus, logger: o.logger}
}

// Bus returns the in-process bus shared by all participants of f.
func (f *Factory) Bus() *inprocess.Bus { return f.bus }

// DefaultConfig enables the configured default transports.
func (f *Factory) DefaultConfig() transport.ParticipantConfig {
	return transport.NewParticipantConfig(f.cfg.Transport.Default...)
}

// CreateListener resolves uri against the default config and opens one
// listener per enabled transport.
func (f *Factory) CreateListener(uri string) (*Listener, error) {
	scope, cfg, err := transport.ParseScopeAndConfig(uri, f.DefaultConfig())
	if err != nil {
		return nil, err
	}
	names, err := f.enabled(cfg)
	if err != nil {
		return nil, err
	}

	l := &Listener{scope: scope, logger: f.logger}
	for _, name := range names {
		tl, err := f.newListener(name, scope, cfg.Transports[name].Options)
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "%s listener", name), l.Close())
		}
		l.listeners = append(l.listeners, tl)
		l.names = append(l.names, name)
	}

	f.logger.Info("listener created", zap.String("scope", scope.String()), zap.Strings("transports", names))
	return l, nil
}

// CreateInformer resolves uri against the default config and opens one
// informer per enabled transport.
func (f *Factory) CreateInformer(uri string) (*Informer, error) {
	scope, cfg, err := transport.ParseScopeAndConfig(uri, f.DefaultConfig())
	if err != nil {
		return nil, err
	}
	names, err := f.enabled(cfg)
	if err != nil {
		return nil, err
	}

	inf := &Informer{scope: scope}
	for _, name := range names {
		ti, err := f.newInformer(name, scope, cfg.Transports[name].Options)
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "%s informer", name), inf.Close())
		}
		inf.informers = append(inf.informers, ti)
	}

	f.logger.Info("informer created", zap.String("scope", scope.String()), zap.Strings("transports", names))
	return inf, nil
}

func (f *Factory) enabled(cfg transport.ParticipantConfig) ([]string, error) {
	names := cfg.Enabled()
	if len(names) == 0 {
		return nil, ErrNoTransport
	}
	for _, name := range names {
		switch name {
		case TransportInProcess, TransportKafka, TransportRedis:
		default:
			return nil, errors.Wrap(ErrUnknownTransport, name)
		}
	}
	return names, nil
}

func (f *Factory) newListener(name string, scope transport.Scope, opts map[string]string) (transport.Listener, error) {
	switch name {
	case TransportInProcess:
		return inprocess.NewListener(f.bus, scope), nil
	case TransportKafka:
		return kafka.NewListener(f.cfg.Kafka, scope, opts, f.logger)
	case TransportRedis:
		return redis.NewListener(f.cfg.Redis, scope, opts, f.logger)
	}
	return nil, errors.Wrap(ErrUnknownTransport, name)
}

func (f *Factory) newInformer(name string, scope transport.Scope, opts map[string]string) (transport.Informer, error) {
	switch name {
	case TransportInProcess:
		return inprocess.NewInformer(f.bus, scope), nil
	case TransportKafka:
		return kafka.NewInformer(f.cfg.Kafka, scope, opts)
	case TransportRedis:
		return redis.NewInformer(f.cfg.Redis, scope, opts)
	}
	return nil, errors.Wrap(ErrUnknownTransport, name)
}
