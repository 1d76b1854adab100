package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidURI   = errors.New("transport: invalid uri")
	ErrInvalidScope = errors.New("transport: invalid scope")
)

// Message is one payload delivered on a scope.
type Message struct {
	Scope     Scope
	Payload   []byte
	Timestamp time.Time
}

// Handler receives messages from a Listener. It runs on the transport's
// goroutine and should hand work off quickly.
type Handler func(Message)

// Listener delivers messages published on its scope and every sub-scope.
type Listener interface {
	// Listen blocks, calling handler for each message, until ctx is done
	// or the transport fails.
	Listen(ctx context.Context, handler Handler) error
	Close() error
}

// Informer publishes payloads on a fixed scope.
type Informer interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}
