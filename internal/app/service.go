// Package service composes the checker, the views and the poller behind the
// dashboard HTTP API.
package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/okian/healthboard/internal/adapters/checker"
	"github.com/okian/healthboard/internal/adapters/poller"
	"github.com/okian/healthboard/internal/adapters/render"
	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
)

// Service owns the dashboard's moving parts.
type Service struct {
	mu sync.RWMutex

	// Configuration
	targets          []checker.Target
	checkTimeout     time.Duration
	checkConcurrency int
	pollURL          string
	pollInterval     time.Duration
	pollTimeout      time.Duration
	timeFormat       string

	// Components
	client  *http.Client
	checker *checker.Checker
	fetcher *poller.HTTPFetcher
	list    *render.ListView
	table   *render.TableView
	poller  *poller.Poller

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTargets sets the upstreams reported by /api/health, in display order.
func WithTargets(targets []checker.Target) Option {
	return func(s *Service) {
		s.targets = append([]checker.Target(nil), targets...)
	}
}

// WithCheckTimeout bounds each upstream probe.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.checkTimeout = d
		}
	}
}

// WithCheckConcurrency caps concurrent upstream probes.
func WithCheckConcurrency(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.checkConcurrency = n
		}
	}
}

// WithPollURL sets the status endpoint the poller fetches.
func WithPollURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.pollURL = url
		}
	}
}

// WithPollInterval sets the dashboard refresh period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithPollTimeout bounds one fetch of the status endpoint.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.pollTimeout = d
		}
	}
}

// WithTimeFormat sets the table view's timestamp layout.
func WithTimeFormat(layout string) Option {
	return func(s *Service) {
		if layout != "" {
			s.timeFormat = layout
		}
	}
}

// New constructs a Service. Components exist right away so the HTTP layer can
// be wired before Start; the poll loop only runs after Start.
func New(opts ...Option) *Service {
	s := &Service{
		checkTimeout: 5 * time.Second,
		pollURL:      "http://127.0.0.1:9080/api/health",
		pollInterval: poller.DefaultInterval,
		pollTimeout:  10 * time.Second,
		timeFormat:   render.DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}

	// One client for probes and polls so both share a connection pool.
	s.client = &http.Client{}
	s.checker = checker.New(s.targets,
		checker.WithTimeout(s.checkTimeout),
		checker.WithConcurrency(s.checkConcurrency),
		checker.WithHTTPClient(s.client),
		checker.WithLogger(s.logger.Named("checker")),
	)
	s.list = render.NewListView()
	s.table = render.NewTableView(render.WithTimeFormat(s.timeFormat))

	s.fetcher = poller.NewHTTPFetcher(s.pollURL, s.client)
	s.poller = poller.New(s.fetcher,
		poller.WithInterval(s.pollInterval),
		poller.WithTimeout(s.pollTimeout),
		poller.WithRenderers(s.list, s.table),
		poller.WithLogger(s.logger.Named("poller")),
	)
	return s
}

// Start launches the poll loop. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.poller.Run(runCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("targets", len(s.targets)),
		logger.Duration("pollInterval", s.pollInterval),
		logger.String("pollURL", s.fetcher.URL()),
	)
	return nil
}

// Stop cancels the poll loop and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.done
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Check implements the /api/health source.
func (s *Service) Check(ctx context.Context) status.Map {
	return s.checker.Check(ctx)
}

// ListView returns the div-per-service view.
func (s *Service) ListView() *render.ListView { return s.list }

// TableView returns the table view.
func (s *Service) TableView() *render.TableView { return s.table }

// PollURL returns the status endpoint the poll loop reads.
func (s *Service) PollURL() string { return s.fetcher.URL() }

// PollInterval returns the refresh period.
func (s *Service) PollInterval() time.Duration { return s.pollInterval }

// PollOnce runs a single tick outside the loop.
func (s *Service) PollOnce(ctx context.Context) error {
	return s.poller.PollOnce(ctx)
}

// Running reports whether the poll loop is active.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
