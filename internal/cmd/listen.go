package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-relay/pkg/common/http/server"
	"github.com/huynhanx03/go-relay/pkg/mq/dispatcher"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

type listenOptions struct {
	http  bool
	count int
}

func newListenCommand(a *app) *cobra.Command {
	var opts listenOptions

	cmd := &cobra.Command{
		Use:   "listen <uri>",
		Short: "Print every message published on a scope or below it",
		Long: `Listen subscribes to the scope of the URI and prints one line per
message: the publishing scope followed by the payload. Messages are
buffered in a bounded queue; when consumers fall behind the oldest are
dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.listen(ctx, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.http, "http", false, "serve /healthz and /stats on server.host:server.port")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "exit after this many messages (0 means no limit)")
	return cmd
}

func (a *app) listen(ctx context.Context, uri string, opts listenOptions, out io.Writer) error {
	l, err := a.factory.CreateListener(uri)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := &printer{out: out, limit: opts.count, done: cancel}
	d := dispatcher.New[transport.Message](p.print, dispatcher.Config{
		Capacity: a.cfg.Queue.Capacity,
		Workers:  a.cfg.Queue.Workers,
	}, dispatcher.WithLogger(a.logger))

	// Workers outlive ctx so Stop can drain what was received.
	if err := d.Start(context.Background()); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.Listen(gctx, d.Offer)
	})
	if opts.http {
		srv := server.New(a.cfg.Server, d.Stats, a.logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	a.logger.Info("listening", zap.String("scope", l.Scope().String()), zap.Strings("transports", l.Transports()))
	err = g.Wait()
	if stopErr := d.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printer writes messages to out and cancels once limit is reached.
type printer struct {
	mu    sync.Mutex
	out   io.Writer
	limit int
	seen  int
	done  context.CancelFunc
}

func (p *printer) print(_ context.Context, m transport.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.limit > 0 && p.seen >= p.limit {
		return nil
	}
	p.seen++
	if _, err := fmt.Fprintf(p.out, "%s %s\n", m.Scope, m.Payload); err != nil {
		return err
	}
	if p.limit > 0 && p.seen == p.limit {
		p.done()
	}
	return nil
}
