package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/okian/healthboard/pkg/logger"
)

// DashboardHandler serves the rendered views as HTML pages.
type DashboardHandler struct {
	list    HTMLView
	table   HTMLView
	refresh time.Duration
	logger  logger.Logger
}

// NewDashboardHandler creates a dashboard handler. refresh sets the pages'
// auto-reload period; zero disables it.
func NewDashboardHandler(list, table HTMLView, refresh time.Duration, l logger.Logger) *DashboardHandler {
	return &DashboardHandler{list: list, table: table, refresh: refresh, logger: l}
}

// HandleList handles GET /dashboard (one div per service).
func (h *DashboardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/dashboard" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	h.serve(w, r, "Service Health", h.list)
}

// HandleTable handles GET /dashboard/table (one row per service).
func (h *DashboardHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Service Health (table)", h.table)
}

func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, title string, view HTMLView) {
	if !allowRead(w, r) {
		return
	}

	var body bytes.Buffer
	if err := view.WriteHTML(&body); err != nil {
		h.logger.Error(r.Context(), "render view", logger.Error(err), logger.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "render_failed", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title   string
		Refresh int
		Body    template.HTML
	}{
		Title:   title,
		Refresh: refreshSeconds(h.refresh),
		Body:    template.HTML(body.String()), //nolint:gosec // produced by html/template
	})
	if err != nil {
		h.logger.Error(r.Context(), "render page", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = page.WriteTo(w)
}

// refreshSeconds converts the refresh period for the meta tag, rounding up so
// a sub-second period still refreshes every second. Zero disables it.
func refreshSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
