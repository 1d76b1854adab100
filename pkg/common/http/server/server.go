package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/common/http/handler"
	"github.com/huynhanx03/go-relay/pkg/common/http/response"
	"github.com/huynhanx03/go-relay/pkg/mq/dispatcher"
	"github.com/huynhanx03/go-relay/pkg/settings"
)

const shutdownTimeout = 5 * time.Second

// StatsFunc reports the current dispatcher statistics.
type StatsFunc func() dispatcher.Stats

// Server exposes /healthz and /stats of a running listener.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds the router. Nothing listens until Run.
func New(cfg settings.Server, stats StatsFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           NewRouter(stats, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter registers the routes on a fresh engine.
func NewRouter(stats StatsFunc, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(logger))

	r.GET("/healthz", handler.Wrap[string](func(context.Context) (string, error) {
		return "ok", nil
	}))
	r.GET("/stats", handler.Wrap[dispatcher.Stats](func(context.Context) (dispatcher.Stats, error) {
		return stats(), nil
	}))
	r.NoRoute(func(c *gin.Context) {
		response.ErrorResponse(c, response.CodeNotFound, nil)
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.srv.Addr)
	}
	s.logger.Info("http server started", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	s.logger.Info("http server stopped")
	return nil
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
