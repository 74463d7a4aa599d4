// Package telemetry wires Bot API call observations into Prometheus metrics
// and OpenTelemetry trace export.
package telemetry

import (
	"context"
	"net/http"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records every observed call. It implements botapi.Observer and owns
// a private registry so tests and embedders never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	fetches  *prometheus.CounterVec
}

var _ botapi.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botapi",
			Name:      "requests_total",
			Help:      "Bot API calls by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "botapi",
			Name:      "request_duration_seconds",
			Help:      "Bot API call latency, media download included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botapi",
			Name:      "media_fetches_total",
			Help:      "Remote media downloads by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.fetches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCall implements botapi.Observer.
func (m *Metrics) ObserveCall(_ context.Context, info botapi.CallInfo) {
	m.requests.WithLabelValues(info.Method, string(info.Outcome)).Inc()
	m.duration.WithLabelValues(info.Method).Observe(info.Duration.Seconds())
	if info.Fetch != "" {
		m.fetches.WithLabelValues(string(info.Fetch)).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
