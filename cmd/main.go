package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/healthboard/internal/adapters/checker"
	"github.com/okian/healthboard/internal/adapters/http/api"
	"github.com/okian/healthboard/internal/adapters/http/site"
	"github.com/okian/healthboard/internal/adapters/http/swagger"
	app "github.com/okian/healthboard/internal/app"
	"github.com/okian/healthboard/internal/config"
	"github.com/okian/healthboard/pkg/logger"
	"github.com/okian/healthboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second // /api/health waits for upstream probes
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(appOptions(cfg, log)...)
	srv := newHTTPServer(ctx, cfg, svc, log)

	// Bind before the poller starts: it reads this server's own /api/health.
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error(ctx, "failed to listen", logger.String("addr", cfg.Addr), logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)

	serveErr, err := start(ctx, ln, srv, svc, log)
	if err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newHTTPServer assembles every route behind the server-wide middleware.
func newHTTPServer(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	apiServer := api.NewServer(svc, svc.ListView(), svc.TableView(),
		api.WithRateLimit(cfg.APIRateLimit, cfg.APIRateBurst),
		api.WithRefresh(cfg.PollInterval()),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// start serves srv on the already bound ln and then starts the poll loop, so
// the first tick reaches a live listener. The returned channel reports a
// serve failure.
func start(ctx context.Context, ln net.Listener, srv *http.Server, svc *app.Service, log logger.Logger) (<-chan error, error) {
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if err := svc.Start(ctx); err != nil {
		_ = srv.Close()
		return nil, err
	}
	return serveErr, nil
}

// appOptions maps configuration onto service options.
func appOptions(cfg *config.Config, log logger.Logger) []app.Option {
	targets := make([]checker.Target, 0, len(cfg.Services))
	for _, t := range cfg.Services {
		targets = append(targets, checker.Target{Name: t.Name, URL: t.URL})
	}
	return []app.Option{
		app.WithLogger(log),
		app.WithTargets(targets),
		app.WithCheckTimeout(cfg.CheckTimeout()),
		app.WithCheckConcurrency(cfg.CheckConcurrency),
		app.WithPollURL(cfg.PollURL()),
		app.WithPollInterval(cfg.PollInterval()),
		app.WithPollTimeout(cfg.PollTimeout()),
		app.WithTimeFormat(cfg.TimeFormat),
	}
}

// startSystemMetricsUpdater periodically records process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
