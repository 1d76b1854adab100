package participant

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-relay/pkg/transport"
)

// Listener receives messages on one scope from every enabled transport.
// The handler may be called concurrently when several transports are on.
type Listener struct {
	scope     transport.Scope
	names     []string
	listeners []transport.Listener
	logger    *zap.Logger
}

var _ transport.Listener = (*Listener)(nil)

// Scope returns the scope the listener is bound to.
func (l *Listener) Scope() transport.Scope { return l.scope }

// Transports returns the names of the transports in use.
func (l *Listener) Transports() []string { return append([]string(nil), l.names...) }

// Listen runs every transport listener until ctx is done or one fails.
// A failure cancels the others.
func (l *Listener) Listen(ctx context.Context, handler transport.Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, tl := range l.listeners {
		g.Go(func() error {
			if err := tl.Listen(ctx, handler); err != nil {
				l.logger.Error("transport listener failed", zap.String("transport", l.names[i]), zap.Error(err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Close closes every transport listener.
func (l *Listener) Close() error {
	var err error
	for _, tl := range l.listeners {
		err = multierr.Append(err, tl.Close())
	}
	return err
}

// Informer publishes on one scope through every enabled transport.
type Informer struct {
	scope     transport.Scope
	informers []transport.Informer
}

var _ transport.Informer = (*Informer)(nil)

// Scope returns the scope the informer publishes on.
func (i *Informer) Scope() transport.Scope { return i.scope }

// Publish sends payload through all transports, collecting failures.
func (i *Informer) Publish(ctx context.Context, payload []byte) error {
	var err error
	for _, ti := range i.informers {
		err = multierr.Append(err, ti.Publish(ctx, payload))
	}
	return err
}

// Close closes every transport informer.
func (i *Informer) Close() error {
	var err error
	for _, ti := range i.informers {
		err = multierr.Append(err, ti.Close())
	}
	return err
}
