// Package metrics records page and upstream metrics in a private Prometheus
// registry and exposes them over HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "counterpage"

// Render results.
const (
	ResultOK       = "ok"
	ResultFallback = "fallback"
)

// Metrics holds the collectors for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	upstreamErrors   prometheus.Counter
	pageRenders      *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Counter API requests by response status code.",
		}, []string{"code"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Counter API round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		upstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_transport_errors_total",
			Help:      "Counter API requests that failed before a response arrived.",
		}),
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Pages rendered, by result (ok or fallback).",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.upstreamErrors,
		m.pageRenders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpstream records one completed upstream round trip.
func (m *Metrics) ObserveUpstream(d time.Duration, statusCode int) {
	if m == nil {
		return
	}
	m.upstreamDuration.Observe(d.Seconds())
	m.upstreamRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// UpstreamError records a round trip that produced no response.
func (m *Metrics) UpstreamError() {
	if m == nil {
		return
	}
	m.upstreamErrors.Inc()
}

// PageRendered records a served page with result ResultOK or ResultFallback.
func (m *Metrics) PageRendered(result string) {
	if m == nil {
		return
	}
	m.pageRenders.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
