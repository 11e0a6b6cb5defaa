// Package prometheus records pipeline metrics with the Prometheus client.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "docbot"

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	fallbacks  *prometheus.CounterVec
	modelCalls *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Chat requests by terminal state.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Chat request latency by terminal state.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fallbacks_total",
			Help:      "Switches to the fallback model by pipeline step.",
		}, []string{"step"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model invocations by model, step and result.",
		}, []string{"model", "step", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.fallbacks, m.modelCalls,
	)
	return m
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(outcome string, duration time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveFallback records a switch to the fallback model.
func (m *Metrics) ObserveFallback(step string) {
	m.fallbacks.WithLabelValues(step).Inc()
}

// ObserveModelCall records one model invocation.
func (m *Metrics) ObserveModelCall(model, step string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.modelCalls.WithLabelValues(model, step, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
