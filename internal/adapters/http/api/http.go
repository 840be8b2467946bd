// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
)

// StatusSource produces the aggregated status served at /api/health.
type StatusSource interface {
	Check(ctx context.Context) status.Map
}

// HTMLView writes an HTML fragment of the current dashboard state.
type HTMLView interface {
	WriteHTML(w io.Writer) error
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	statusHandler    *StatusHandler
	healthHandler    *HealthHandler
	dashboardHandler *DashboardHandler
	logger           logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	rateLimit float64
	rateBurst int
	refresh   time.Duration
	logger    logger.Logger
}

// WithRateLimit limits /api/health to rps requests per second with the
// given burst. A zero rate disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *serverOptions) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// WithRefresh sets the dashboard pages' auto-refresh period.
func WithRefresh(d time.Duration) Option {
	return func(o *serverOptions) {
		if d >= 0 {
			o.refresh = d
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(source StatusSource, list, table HTMLView, opts ...Option) *Server {
	o := serverOptions{refresh: 15 * time.Second, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		statusHandler:    NewStatusHandler(source, newLimiter(o.rateLimit, o.rateBurst), o.logger),
		healthHandler:    NewHealthHandler(),
		dashboardHandler: NewDashboardHandler(list, table, o.refresh, o.logger),
		logger:           o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/api/health", MetricsMiddleware(s.statusHandler.HandleStatus, "api_health"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleList, "dashboard"))
	mux.HandleFunc("/dashboard/table", MetricsMiddleware(s.dashboardHandler.HandleTable, "dashboard_table"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/", s.handleRoot)
}

// Handler returns mux wrapped with the server-wide middleware.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return RequestID(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// allowRead rejects anything but GET and HEAD with 405.
func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}
