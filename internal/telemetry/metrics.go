package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate names used as the "gate" label.
const (
	GateAuthn     = "authn"
	GateRole      = "role"
	GateOwnership = "ownership"
)

// Gate outcomes used as the "outcome" label.
const (
	OutcomePass   = "pass"
	OutcomeReject = "reject"
	OutcomeError  = "error"
)

// Metrics holds the Prometheus collectors for the API server.
// Each instance owns its registry so tests can build independent copies.
type Metrics struct {
	registry *prometheus.Registry

	GateDecisions   *prometheus.CounterVec
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the server collectors. Process and Go
// runtime collectors are registered alongside them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "articles_gate_decisions_total",
				Help: "Total number of authorization gate decisions",
			},
			[]string{"gate", "outcome"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "articles_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "articles_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.GateDecisions,
		m.RequestCounter,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordGateDecision counts one authorization gate outcome.
func (m *Metrics) RecordGateDecision(gate, outcome string) {
	m.GateDecisions.WithLabelValues(gate, outcome).Inc()
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records every request against its chi route pattern, so
// "/api/articles/{id}" is one series regardless of the id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Method, route, status, time.Since(start))
	})
}
