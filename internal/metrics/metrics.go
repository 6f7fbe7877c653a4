// Package metrics exposes Prometheus metrics for tool loading and invocation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toolproxy"

// Invocation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeUpstream = "upstream_error"
)

// Metrics collects proxy metrics into its own registry. All methods are safe
// on a nil receiver so components can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	upstreamStatus     *prometheus.CounterVec
	registryTools      prometheus.Gauge
	sourceLoads        *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
}

// New creates a Metrics instance with a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		invocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of tool invocations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		invocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Duration of proxied tool calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool"},
		),
		upstreamStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_status_total",
				Help:      "Upstream HTTP status codes returned by proxied calls",
			},
			[]string{"tool", "code"},
		),
		registryTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_tools",
				Help:      "Number of tools in the published registry snapshot",
			},
		),
		sourceLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_loads_total",
				Help:      "Source document load attempts by result",
			},
			[]string{"source", "result"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of inbound HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveInvocation records one dispatcher call. statusCode is ignored unless
// outcome is OutcomeOK.
func (m *Metrics) ObserveInvocation(tool, outcome string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(tool, outcome).Inc()
	if outcome == OutcomeNotFound {
		return
	}
	m.invocationDuration.WithLabelValues(tool).Observe(d.Seconds())
	if outcome == OutcomeOK {
		m.upstreamStatus.WithLabelValues(tool, strconv.Itoa(statusCode)).Inc()
	}
}

// ObserveSourceLoad records the result of loading one source.
func (m *Metrics) ObserveSourceLoad(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sourceLoads.WithLabelValues(source, result).Inc()
}

// SetRegistryTools records the size of the published registry.
func (m *Metrics) SetRegistryTools(n int) {
	if m == nil {
		return
	}
	m.registryTools.Set(float64(n))
}

// ObserveHTTPRequest records one inbound HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
