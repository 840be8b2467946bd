package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "HEALTHBOARD_"
	EnvConfigPath = "HEALTHBOARD_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HEALTHBOARD_CONFIG is set
//  3. env (prefix HEALTHBOARD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// HEALTHBOARD_POLL_INTERVAL_MS -> poll_interval_ms (flat keys, underscores kept)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		if s == "healthboard_config" {
			return ""
		}
		return strings.TrimPrefix(s, "healthboard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: poll_interval_ms must be > 0", ErrInvalidConfig)
	}
	if c.PollTimeoutMS < 0 || c.CheckTimeoutMS < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.CheckConcurrency < 0 {
		return fmt.Errorf("%w: check_concurrency must not be negative", ErrInvalidConfig)
	}
	if c.APIRateLimit < 0 || c.APIRateBurst < 0 {
		return fmt.Errorf("%w: rate limit settings must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(c.Services))
	for i, t := range c.Services {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: services[%d]: name must not be empty", ErrInvalidConfig, i)
		}
		if strings.TrimSpace(t.URL) == "" {
			return fmt.Errorf("%w: services[%d] (%s): url must not be empty", ErrInvalidConfig, i, t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: duplicate service name %q", ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}
