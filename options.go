package gumby

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs            []string
	username         string
	password         string
	db               int
	prefix           string
	readinessTimeout time.Duration
	seed             uint64
	logger           *zap.Logger
}

// WithAddrs sets the search engine "host:port" addresses.
func WithAddrs(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = append(c.addrs, addrs...)
	}
}

// WithAuth sets basic auth credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDB selects a logical database.
func WithDB(n int) Option {
	return func(c *clientConfig) {
		c.db = n
	}
}

// WithPrefix sets the key prefix of every index and document.
func WithPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.prefix = prefix
	}
}

// WithReadinessTimeout bounds how long New waits for the engine.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithSeed fixes the random data generator seed.
func WithSeed(seed uint64) Option {
	return func(c *clientConfig) {
		c.seed = seed
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
