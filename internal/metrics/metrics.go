// Package metrics holds the Prometheus collectors for the log pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bimmerbailey/logshare/internal/redact"
)

// Metrics holds all Prometheus metrics for logshare.
type Metrics struct {
	logsCreated *prometheus.CounterVec
	redactions  *prometheus.CounterVec
	logsExpired prometheus.Counter
	scans       *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance on its own registry, with Go runtime and
// process collectors attached.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		logsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logshare_logs_created_total",
				Help: "Logs created, by detected context",
			},
			[]string{"context"},
		),

		redactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logshare_redactions_total",
				Help: "Substrings replaced by the redactor, by rule",
			},
			[]string{"rule"},
		),

		logsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "logshare_logs_expired_total",
				Help: "Expired logs removed by the sweeper",
			},
		),

		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logshare_scan_findings_total",
				Help: "Pre-submission scans that reported a sensitive kind",
			},
			[]string{"kind"},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logshare_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logshare_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.logsCreated,
		m.redactions,
		m.logsExpired,
		m.scans,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// LogCreated records one created log and the redactions applied to it.
func (m *Metrics) LogCreated(context string, hits []redact.Hit) {
	m.logsCreated.WithLabelValues(context).Inc()
	for _, h := range hits {
		m.redactions.WithLabelValues(h.Rule).Add(float64(h.Count))
	}
}

// LogsExpired records swept logs.
func (m *Metrics) LogsExpired(n int) {
	m.logsExpired.Add(float64(n))
}

// ScanFindings records the kinds reported by one scan.
func (m *Metrics) ScanFindings(kinds []string) {
	for _, k := range kinds {
		m.scans.WithLabelValues(k).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
