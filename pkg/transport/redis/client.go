package redis

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-relay/pkg/settings"
	"github.com/huynhanx03/go-relay/pkg/transport"
)

const (
	defaultHost            = "localhost"
	defaultPort            = 6379
	defaultPoolSize        = 10
	defaultMinIdleConns    = 1
	defaultPoolTimeout     = 5
	defaultDialTimeout     = 5
	defaultReadTimeout     = 3
	defaultWriteTimeout    = 3
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis
)

var ErrPingFailed = errors.New("redis: ping failed")

// resolveConfig applies URI host/port over cfg and fills unset fields.
func resolveConfig(cfg settings.Redis, opts map[string]string) settings.Redis {
	if host := opts[transport.OptionHost]; host != "" {
		cfg.Host = host
		cfg.Port = 0
	}
	if port, err := strconv.Atoi(opts[transport.OptionPort]); err == nil {
		cfg.Port = port
	}
	if db, err := strconv.Atoi(opts["db"]); err == nil {
		cfg.Database = db
	}

	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.PoolTimeout == 0 {
		cfg.PoolTimeout = defaultPoolTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = defaultMinRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = defaultMaxRetryBackoff
	}
	return cfg
}

func newOptions(cfg settings.Redis) *redisV9.Options {
	return &redisV9.Options{
		Addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:        cfg.Password,
		DB:              cfg.Database,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxRetries:      cfg.MaxRetries,
		DialTimeout:     time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:     time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.WriteTimeout) * time.Second,
		PoolTimeout:     time.Duration(cfg.PoolTimeout) * time.Second,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}
}

// connect opens a client and pings it.
func connect(cfg settings.Redis, opts map[string]string) (*redisV9.Client, error) {
	resolved := resolveConfig(cfg, opts)
	client := redisV9.NewClient(newOptions(resolved))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(resolved.DialTimeout)*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(ErrPingFailed, "%s: %v", client.Options().Addr, err)
	}
	return client, nil
}
