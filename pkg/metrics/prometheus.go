// Package metrics provides Prometheus metrics for the healthboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll results used as label values.
const (
	PollResultSuccess = "success"
	PollResultFailure = "failure"
)

// Manager manages all Prometheus metrics for the healthboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Poller
	pollTicks       *prometheus.CounterVec
	pollFailures    *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	pollLastSuccess prometheus.Gauge
	renderedEntries *prometheus.GaugeVec
	servicesHealthy prometheus.Gauge
	servicesFailing prometheus.Gauge

	// Upstream checker
	upstreamChecks  *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "healthboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.pollTicks = m.counterVec("poll_ticks_total", "Poll ticks by result", "result")
	m.pollFailures = m.counterVec("poll_failures_total", "Failed poll ticks by failure kind", "kind")
	m.pollDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "poll_duration_milliseconds",
		Help:        "Duration of a poll tick (fetch and render) in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.pollLastSuccess = m.gauge("poll_last_success_unixtime", "Unix time of the last successful poll")
	m.renderedEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rendered_entries",
		Help:        "Entries currently rendered per view",
		ConstLabels: m.constLabels,
	}, []string{"view"})
	m.servicesHealthy = m.gauge("services_healthy", "Services reported HEALTHY by the last successful poll")
	m.servicesFailing = m.gauge("services_unhealthy", "Services reported as anything but HEALTHY by the last successful poll")

	m.upstreamChecks = m.counterVec("upstream_checks_total", "Upstream health checks by service and resulting status", "service", "status")
	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_check_latency_milliseconds",
		Help:        "Upstream health check latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"service"})

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordPollSuccess records a successful tick with its duration and the
// healthy/unhealthy split of the rendered map.
func (m *Manager) RecordPollSuccess(durationMs float64, healthy, unhealthy int, unixTime float64) {
	if !m.enabled {
		return
	}
	m.pollTicks.WithLabelValues(PollResultSuccess).Inc()
	m.pollDuration.Observe(durationMs)
	m.pollLastSuccess.Set(unixTime)
	m.servicesHealthy.Set(float64(healthy))
	m.servicesFailing.Set(float64(unhealthy))
}

// RecordPollFailure records a failed tick.
func (m *Manager) RecordPollFailure(kind string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.pollTicks.WithLabelValues(PollResultFailure).Inc()
	m.pollFailures.WithLabelValues(kind).Inc()
	m.pollDuration.Observe(durationMs)
}

// UpdateRenderedEntries sets the number of entries a view currently shows.
func (m *Manager) UpdateRenderedEntries(view string, n int) {
	if !m.enabled {
		return
	}
	m.renderedEntries.WithLabelValues(view).Set(float64(n))
}

// RecordUpstreamCheck records one upstream probe.
func (m *Manager) RecordUpstreamCheck(service, status string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.upstreamChecks.WithLabelValues(service, status).Inc()
	m.upstreamLatency.WithLabelValues(service).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited records a request rejected by the limiter.
func (m *Manager) RecordRateLimited(endpoint string) {
	if !m.enabled {
		return
	}
	m.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// RecordError records an HTTP error by type/severity and by endpoint.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystem sets memory and goroutine gauges and observes the GC pause.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if gcPauseMs > 0 {
		m.systemGCPauseTime.Observe(gcPauseMs)
	}
}

// Package-level helpers forward to the global manager.

// RecordPollSuccess records a successful poll tick.
func RecordPollSuccess(durationMs float64, healthy, unhealthy int, unixTime float64) {
	globalManager.RecordPollSuccess(durationMs, healthy, unhealthy, unixTime)
}

// RecordPollFailure records a failed poll tick.
func RecordPollFailure(kind string, durationMs float64) {
	globalManager.RecordPollFailure(kind, durationMs)
}

// UpdateRenderedEntries sets the rendered entry count for a view.
func UpdateRenderedEntries(view string, n int) {
	globalManager.UpdateRenderedEntries(view, n)
}

// RecordUpstreamCheck records one upstream probe.
func RecordUpstreamCheck(service, status string, latencyMs float64) {
	globalManager.RecordUpstreamCheck(service, status, latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordRateLimited records a request rejected by the limiter.
func RecordRateLimited(endpoint string) {
	globalManager.RecordRateLimited(endpoint)
}

// RecordError records an HTTP error.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// UpdateSystem updates system gauges.
func UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, gcPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
