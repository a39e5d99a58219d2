// Package metrics holds the Prometheus collectors for generation outcomes and
// HTTP traffic. Collectors live on a private registry, not the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	Registry *prometheus.Registry

	GenerationRequests *prometheus.CounterVec
	Fallbacks          *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
}

// New creates a registry and registers all collectors on it, including the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		GenerationRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylist_generation_requests_total",
				Help: "Recommendation requests partitioned by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		Fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylist_fallbacks_total",
				Help: "Fallback sets served, partitioned by failure reason.",
			},
			[]string{"reason"},
		),
		GenerationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stylist_generation_duration_seconds",
				Help:    "Latency of the outbound generation call.",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
			},
			[]string{"provider"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylist_http_requests_total",
				Help: "HTTP requests partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
