package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starford/coursebook/internal/models"
)

// Metrics holds all Prometheus metrics for coursebook
type Metrics struct {
	// Corpus metrics
	Modules      *prometheus.GaugeVec
	Warnings     *prometheus.GaugeVec
	Reloads      *prometheus.CounterVec
	LoadDuration prometheus.Histogram

	// Checklist metrics
	ChecklistItems *prometheus.GaugeVec
	Toggles        *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SSEClients          prometheus.Gauge
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			Modules: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "coursebook_modules",
					Help: "Number of loaded modules",
				},
				[]string{"level"},
			),
			Warnings: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "coursebook_warnings",
					Help: "Number of corpus warnings in the current snapshot",
				},
				[]string{"kind"},
			),
			Reloads: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "coursebook_reloads_total",
					Help: "Total number of corpus loads",
				},
				[]string{"success"},
			),
			LoadDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "coursebook_load_duration_seconds",
					Help:    "Corpus load duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 2s
				},
			),
			ChecklistItems: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "coursebook_checklist_items",
					Help: "Checklist items by state",
				},
				[]string{"state"},
			),
			Toggles: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "coursebook_checklist_toggles_total",
					Help: "Total number of checklist toggle requests",
				},
				[]string{"result"},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "coursebook_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "coursebook_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
			SSEClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "coursebook_sse_clients",
					Help: "Number of connected event-stream clients",
				},
			),
		}
	})

	return sharedMetrics
}

// RecordLoad records one corpus load and, on success, replaces the
// snapshot gauges with the new corpus' counts.
func (m *Metrics) RecordLoad(c *models.Corpus, err error, d time.Duration) {
	m.LoadDuration.Observe(d.Seconds())
	if err != nil {
		m.Reloads.WithLabelValues("false").Inc()
		return
	}
	m.Reloads.WithLabelValues("true").Inc()

	m.Modules.Reset()
	for _, l := range models.Levels {
		m.Modules.WithLabelValues(string(l)).Set(0)
	}
	for _, mod := range c.Modules {
		m.Modules.WithLabelValues(string(mod.Level)).Inc()
	}

	m.Warnings.Reset()
	for _, w := range c.Warnings {
		m.Warnings.WithLabelValues(w.Kind).Inc()
	}

	done, total := 0, 0
	if c.Checklist != nil {
		done, total = c.Checklist.Overall.Done, c.Checklist.Overall.Total
	}
	m.ChecklistItems.WithLabelValues("done").Set(float64(done))
	m.ChecklistItems.WithLabelValues("open").Set(float64(total - done))
}

// RecordToggle records a checklist toggle outcome ("ok", "conflict", "not_found", "error").
func (m *Metrics) RecordToggle(result string) {
	m.Toggles.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}
