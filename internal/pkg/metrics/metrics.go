package metrics

import (
	"net/http"
	"strconv"
	"time"

	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	ingestedPoints   *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindtrace_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mindtrace_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 15), // 5ms to ~82s
			},
			[]string{"method", "route"},
		),
		ingestedPoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindtrace_ingested_points_total",
				Help: "Total number of vector points upserted by ingestion",
			},
			[]string{"collection"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mindtrace_upstream_request_duration_seconds",
				Help:    "Duration of outbound calls to model providers and vector stores",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"upstream", "method", "status"},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.ingestedPoints,
		m.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) AddIngestedPoints(collection string, n int) {
	m.ingestedPoints.WithLabelValues(collection).Add(float64(n))
}

// UpstreamObserver returns a pkg/http observer labelled with the upstream name.
func (m *Metrics) UpstreamObserver(upstream string) pkghttp.ObserveFunc {
	return func(req *http.Request, status int, elapsed time.Duration) {
		label := "error"
		if status != 0 {
			label = strconv.Itoa(status)
		}
		m.upstreamDuration.WithLabelValues(upstream, req.Method, label).Observe(elapsed.Seconds())
	}
}
