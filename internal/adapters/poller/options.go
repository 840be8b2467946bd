package poller

import (
	"time"

	"github.com/okian/healthboard/internal/adapters/render"
	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
)

// Option applies a configuration option to the Poller.
type Option func(*Poller)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout bounds each fetch. Zero leaves fetches unbounded.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithRenderers appends views refreshed on every successful tick.
func WithRenderers(rs ...render.Renderer) Option {
	return func(p *Poller) {
		for _, r := range rs {
			if r != nil {
				p.renderers = append(p.renderers, r)
			}
		}
	}
}

// WithClock overrides the wall clock used for render timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithOnRender registers a hook called after all renderers ran.
func WithOnRender(fn func(status.Map)) Option {
	return func(p *Poller) {
		p.onRender = fn
	}
}

// WithLogger sets a custom logger for the poller.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}
