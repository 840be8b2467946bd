package checker

import (
	"net/http"
	"time"

	"github.com/okian/healthboard/pkg/logger"
)

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithTimeout bounds each probe. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithConcurrency caps in-flight probes. Zero means one per target.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n >= 0 {
			c.concurrency = n
		}
	}
}

// WithHTTPClient sets the client used for probes.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets a custom logger for the checker.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}
