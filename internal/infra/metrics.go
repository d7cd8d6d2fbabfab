package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "photobooth"

// Metrics holds the service's prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	stylizeStages    *prometheus.CounterVec
	imagesReturned   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_requests_total",
			Help:      "Provider calls by provider and HTTP status (0 on transport error).",
		}, []string{"provider", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Provider call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		}, []string{"provider"}),
		stylizeStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stylize_stage_total",
			Help:      "Stylize fallback chain stage results.",
		}, []string{"stage", "result"}),
		imagesReturned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "images_returned_total",
			Help:      "Images returned to callers by endpoint.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.stylizeStages,
		m.imagesReturned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one provider round trip.
func (m *Metrics) ObserveUpstream(provider string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(provider, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveStage records a stylize chain stage result (success, soft, hard).
func (m *Metrics) ObserveStage(stage, result string) {
	if m == nil {
		return
	}
	m.stylizeStages.WithLabelValues(stage, result).Inc()
}

// ObserveImages records images returned to a caller.
func (m *Metrics) ObserveImages(endpoint string, n int) {
	if m == nil {
		return
	}
	m.imagesReturned.WithLabelValues(endpoint).Add(float64(n))
}
