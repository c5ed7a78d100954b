// Package redisclient builds the shared go-redis client used by the lockout, CSRF,
// rate limit and job queue components.
package redisclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings. An empty Host and URL disables Redis.
type Config struct {
	URL             string        `env:"REDIS_URL"`
	Host            string        `env:"REDIS_HOST"`
	Port            string        `env:"REDIS_PORT" envDefault:"6379"`
	Password        string        `env:"REDIS_PASSWORD"`
	Database        int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool          `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// Enabled reports whether a Redis endpoint is configured.
func (c Config) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// Addr is host:port for the non-URL form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// URI returns URL, or a redis:// (rediss:// with TLS) URI built from the host
// settings. It is "" when Redis is disabled.
func (c Config) URI() string {
	if c.URL != "" || c.Host == "" {
		return c.URL
	}
	u := url.URL{Scheme: "redis", Host: c.Addr(), Path: "/" + strconv.Itoa(c.Database)}
	if c.EnableTLS {
		u.Scheme = "rediss"
	}
	if c.Password != "" {
		u.User = url.UserPassword("", c.Password)
	}
	return u.String()
}

// Options converts the config into go-redis options.
func (c Config) Options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opts, nil
	}
	if c.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}

	opts := &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.Database,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: c.ConnMaxIdleTime,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
	if c.EnableTLS {
		opts.TLSConfig = &tls.Config{ServerName: c.Host, MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// Connect creates a client and verifies it with PING.
func Connect(ctx context.Context, c Config) (*redis.Client, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
