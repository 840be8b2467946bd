package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/healthboard/pkg/logger"
	"github.com/okian/healthboard/pkg/metrics"
)

// StatusHandler serves the aggregated upstream status.
type StatusHandler struct {
	source  StatusSource
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewStatusHandler creates a status handler. A nil limiter disables limiting.
func NewStatusHandler(source StatusSource, limiter *rate.Limiter, l logger.Logger) *StatusHandler {
	return &StatusHandler{source: source, limiter: limiter, logger: l}
}

// newLimiter returns a token bucket or nil when rps is not positive.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// HandleStatus handles GET /api/health. The JSON object lists services in
// configured order: {"name": {"status": "...", "color": "..."}}.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordRateLimited("api_health")
		h.logger.Debug(r.Context(), "status request rate limited", logger.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		return
	}
	writeJSON(w, http.StatusOK, h.source.Check(r.Context()))
}
