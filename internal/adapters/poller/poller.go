// Package poller runs the fetch-and-render loop behind the dashboard.
package poller

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/healthboard/internal/adapters/render"
	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
	"github.com/okian/healthboard/pkg/metrics"
)

// DefaultInterval is the time between two ticks.
const DefaultInterval = 15 * time.Second

// Poller fetches the status map on a fixed timer and hands it to renderers.
// Ticks run one at a time on the goroutine calling Run.
type Poller struct {
	fetcher   Fetcher
	renderers []render.Renderer
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
	onRender  func(status.Map)
	logger    logger.Logger
}

// New creates a poller over fetcher. Renderers are added with WithRenderers.
func New(fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured tick period.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run ticks immediately, then every interval, until ctx is cancelled.
// A failed tick is logged and the loop continues; the next tick retries.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info(ctx, "poller started", logger.Duration("interval", p.interval))

	_ = p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(context.Background(), "poller stopped")
			return
		case <-ticker.C:
			_ = p.PollOnce(ctx)
		}
	}
}

// PollOnce performs exactly one tick. Renderers are only touched after the
// whole payload decoded; on error every view keeps its previous content.
func (p *Poller) PollOnce(ctx context.Context) error {
	tick := uuid.NewString()
	start := time.Now()

	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	m, err := p.fetcher.Fetch(fetchCtx)
	if err != nil {
		kind := FailureKind(err)
		metrics.RecordPollFailure(kind, float64(time.Since(start).Milliseconds()))
		if ctx.Err() == nil {
			p.logger.Warn(ctx, "poll failed",
				logger.String("tick", tick),
				logger.String("kind", kind),
				logger.Error(err),
			)
		}
		return err
	}

	at := p.now()
	for _, r := range p.renderers {
		r.Render(m, at)
		metrics.UpdateRenderedEntries(r.Name(), r.Len())
	}
	if p.onRender != nil {
		p.onRender(m)
	}

	healthy := m.HealthyCount()
	metrics.RecordPollSuccess(float64(time.Since(start).Milliseconds()), healthy, m.Len()-healthy, float64(at.Unix()))
	p.logger.Debug(ctx, "poll rendered",
		logger.String("tick", tick),
		logger.Int("services", m.Len()),
		logger.Int("healthy", healthy),
	)
	return nil
}
