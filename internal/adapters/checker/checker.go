// Package checker probes upstream services and aggregates their health into
// a status.Map.
package checker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
	"github.com/okian/healthboard/pkg/metrics"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 64 << 10

	// upstreamUp is the status an upstream must report to be HEALTHY.
	upstreamUp = "UP"
)

// Target is one upstream health endpoint.
type Target struct {
	Name string
	URL  string
}

// Checker fans out a GET to every target and classifies the answers.
type Checker struct {
	targets     []Target
	client      *http.Client
	timeout     time.Duration
	concurrency int
	logger      logger.Logger
}

// New creates a Checker for targets. Targets are probed concurrently and
// reported in the order given here.
func New(targets []Target, opts ...Option) *Checker {
	c := &Checker{
		targets: append([]Target(nil), targets...),
		client:  &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Targets returns the configured targets in display order.
func (c *Checker) Targets() []Target {
	return append([]Target(nil), c.targets...)
}

// Check probes every target and returns the aggregated map. It never fails:
// an unreachable upstream is reported as DOWN. Cancelling ctx marks the
// probes still in flight as DOWN.
func (c *Checker) Check(ctx context.Context) status.Map {
	results := make([]status.Record, len(c.targets))

	g, gctx := errgroup.WithContext(ctx)
	limit := c.concurrency
	if limit <= 0 {
		limit = len(c.targets)
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, t := range c.targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = c.checkOne(gctx, t)
			return nil
		})
	}
	_ = g.Wait()

	m := status.NewMap(len(c.targets))
	for i, t := range c.targets {
		m.Set(t.Name, results[i])
	}
	return m
}

func (c *Checker) checkOne(ctx context.Context, t Target) status.Record {
	start := time.Now()
	s := c.probe(ctx, t)
	elapsed := time.Since(start)

	metrics.RecordUpstreamCheck(t.Name, s, float64(elapsed.Milliseconds()))
	c.logger.Debug(ctx, "upstream checked",
		logger.String("service", t.Name),
		logger.String("status", s),
		logger.Duration("elapsed", elapsed),
	)
	return status.NewRecord(s)
}

// probe classifies one upstream: HEALTHY for 200 with {"status":"UP"},
// DOWN when the request cannot complete, UNHEALTHY otherwise.
func (c *Checker) probe(ctx context.Context, t Target) string {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		c.logger.Warn(ctx, "invalid upstream url", logger.String("service", t.Name), logger.Error(err))
		return status.Down
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return status.Down
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return status.Unhealthy
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return status.Unhealthy
	}
	if body.Status != upstreamUp {
		return status.Unhealthy
	}
	return status.Healthy
}
