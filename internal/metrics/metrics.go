// Package metrics exposes the service's Prometheus collectors. A nil
// *Metrics is valid and records nothing, which keeps tests and the offline
// CLI free of registry setup.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
	exportOverflow prometheus.Counter
	saves          *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	aiCalls        *prometheus.CounterVec
	sessions       prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cv_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cv_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cv_exports_total",
			Help: "PDF exports by result and failing stage.",
		}, []string{"result", "stage"}),
		exportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cv_export_duration_seconds",
			Help:    "Time from capture start to finished PDF.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		exportOverflow: f.NewCounter(prometheus.CounterOpts{
			Name: "cv_export_overflow_total",
			Help: "Exports whose content was taller than one page.",
		}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cv_saves_total",
			Help: "Debounced document saves by result.",
		}, []string{"result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cv_photo_uploads_total",
			Help: "Photo uploads by result.",
		}, []string{"result"}),
		aiCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cv_ai_calls_total",
			Help: "Model calls by operation and result.",
		}, []string{"operation", "result"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "cv_editor_sessions",
			Help: "Open editor sessions.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Request(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Export(stage string, overflow bool, d time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if stage != "" {
		result = ResultError
	}
	m.exports.WithLabelValues(result, stage).Inc()
	if result == ResultOK {
		m.exportDuration.Observe(d.Seconds())
		if overflow {
			m.exportOverflow.Inc()
		}
	}
}

func (m *Metrics) Save(err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Upload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) AICall(op string, err error) {
	if m == nil {
		return
	}
	m.aiCalls.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
