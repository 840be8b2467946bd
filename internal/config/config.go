// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"net"
	"strings"
	"time"
)

// Target is one upstream service probed by the checker.
type Target struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PollIntervalMS is the dashboard refresh period.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// PollTimeoutMS bounds one fetch of the status endpoint. 0 disables the bound.
	PollTimeoutMS int `koanf:"poll_timeout_ms"`

	// PollEndpoint is the absolute URL the poller fetches. Empty derives it from Addr.
	PollEndpoint string `koanf:"poll_endpoint"`

	// CheckTimeoutMS bounds each upstream probe.
	CheckTimeoutMS int `koanf:"check_timeout_ms"`

	// CheckConcurrency caps concurrent upstream probes; 0 means one per target.
	CheckConcurrency int `koanf:"check_concurrency"`

	// TimeFormat is the Go layout for the table view's render timestamp.
	TimeFormat string `koanf:"time_format"`

	// APIRateLimit and APIRateBurst configure the /api/health token bucket.
	// A zero rate disables limiting.
	APIRateLimit float64 `koanf:"api_rate_limit"`
	APIRateBurst int     `koanf:"api_rate_burst"`

	// Services lists the upstreams in display order.
	Services []Target `koanf:"services"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		PollIntervalMS: 15_000,
		PollTimeoutMS:  10_000,
		CheckTimeoutMS: 5_000,
		TimeFormat:     "15:04:05",
		APIRateLimit:   20,
		APIRateBurst:   40,
	}
}

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// PollTimeout returns PollTimeoutMS as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

// CheckTimeout returns CheckTimeoutMS as a duration.
func (c *Config) CheckTimeout() time.Duration {
	return time.Duration(c.CheckTimeoutMS) * time.Millisecond
}

// PollURL returns the status endpoint the poller should fetch. When
// PollEndpoint is unset it points at this process's own /api/health.
func (c *Config) PollURL() string {
	if c.PollEndpoint != "" {
		return c.PollEndpoint
	}
	host, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return "http://127.0.0.1:9080/api/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port + "/api/health"
}
