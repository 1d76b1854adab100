package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-relay/pkg/datastructs/queue"
)

const (
	defaultCapacity = 1024
	defaultWorkers  = 1
)

var (
	ErrAlreadyStarted = errors.New("dispatcher: already started")
	ErrNotStarted     = errors.New("dispatcher: not started")
)

// Dispatcher decouples a producer callback from worker goroutines.
//
// Behavior:
//   - Offer never blocks. When workers fall behind, the oldest pending
//     items are dropped (see Stats().Evicted).
//   - Stop closes the queue; workers finish what is already buffered and exit.
//   - Cancelling the Start context makes workers exit without draining.
type Dispatcher[T any] struct {
	queue   *queue.Synchronized[T]
	handler Handler[T]
	workers int
	logger  *zap.Logger

	mu      sync.Mutex
	group   *errgroup.Group
	started bool

	handled atomic.Uint64
	failed  atomic.Uint64
}

// New creates a Dispatcher calling handler for every item.
func New[T any](handler Handler[T], cfg Config, opts ...Option) *Dispatcher[T] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Dispatcher[T]{
		queue:   queue.NewSynchronized[T](cfg.Capacity),
		handler: handler,
		workers: cfg.Workers,
		logger:  o.logger,
	}
}

// Offer enqueues item for the workers. It is safe to use as a transport callback.
func (d *Dispatcher[T]) Offer(item T) {
	d.queue.Push(item)
}

// Start launches the workers. They run until Stop or until ctx is done.
func (d *Dispatcher[T]) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrAlreadyStarted
	}
	d.started = true

	d.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		d.group.Go(func() error {
			return d.work(ctx, i)
		})
	}

	d.logger.Info("dispatcher started",
		zap.Int("workers", d.workers),
		zap.Int("capacity", d.queue.Capacity()))
	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (d *Dispatcher[T]) Stop() error {
	d.mu.Lock()
	group := d.group
	started := d.started
	d.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	d.queue.Close()
	err := group.Wait()

	stats := d.Stats()
	d.logger.Info("dispatcher stopped",
		zap.Uint64("handled", stats.Handled),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("evicted", stats.Evicted))

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher[T]) Stats() Stats {
	return Stats{
		Pending:  d.queue.Len(),
		Capacity: d.queue.Capacity(),
		Evicted:  d.queue.Evicted(),
		Handled:  d.handled.Load(),
		Failed:   d.failed.Load(),
	}
}

func (d *Dispatcher[T]) work(ctx context.Context, id int) error {
	log := d.logger.With(zap.Int("worker", id))
	for {
		item, err := d.queue.PopContext(ctx)
		if errors.Is(err, queue.ErrClosed) {
			log.Debug("worker drained")
			return nil
		}
		if err != nil {
			return err
		}

		if err := d.handle(ctx, item); err != nil {
			d.failed.Add(1)
			log.Warn("handler failed", zap.Error(err))
			continue
		}
		d.handled.Add(1)
	}
}

func (d *Dispatcher[T]) handle(ctx context.Context, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panicked: %v", r)
		}
	}()
	return d.handler(ctx, item)
}
