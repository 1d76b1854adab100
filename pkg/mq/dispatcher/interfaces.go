package dispatcher

import (
	"context"

	"go.uber.org/zap"
)

// Handler processes one item. A returned error is logged and counted; it
// does not stop the worker.
type Handler[T any] func(ctx context.Context, item T) error

// Config holds configuration for the Dispatcher.
type Config struct {
	// Capacity bounds the pending items. Non-positive means 1024.
	Capacity int
	// Workers is the number of consumer goroutines. Non-positive means 1.
	Workers int
}

// Stats is a point-in-time view of a Dispatcher.
type Stats struct {
	Pending  int    `json:"pending"`
	Capacity int    `json:"capacity"`
	Evicted  uint64 `json:"evicted"`
	Handled  uint64 `json:"handled"`
	Failed   uint64 `json:"failed"`
}

type options struct {
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*options)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
