package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the unit loading core.
type Metrics struct {
	// Loader metrics
	LoadsTotal   *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	UnitsLoaded  prometheus.Gauge

	// Gate metrics
	GateDenials *prometheus.CounterVec

	// Scheduler metrics
	PreloadDispatched prometheus.Counter

	// Navigation metrics
	NavigationsTotal *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		LoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazyunit_loads_total",
				Help: "Total number of unit load attempts by outcome",
			},
			[]string{"unit", "outcome"},
		),
		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lazyunit_load_duration_seconds",
				Help:    "Unit load duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"unit"},
		),
		UnitsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lazyunit_units_loaded",
				Help: "Number of units currently materialized",
			},
		),

		GateDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazyunit_gate_denials_total",
				Help: "Total number of gate denials",
			},
			[]string{"unit"},
		),

		PreloadDispatched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lazyunit_preload_dispatched_total",
				Help: "Total number of speculative loads dispatched by the scheduler",
			},
		),

		NavigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazyunit_navigations_total",
				Help: "Total number of navigation dispatches by status",
			},
			[]string{"status"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazyunit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lazyunit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lazyunit_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	return m
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLoad records one load attempt outcome.
func (m *Metrics) RecordLoad(unit, outcome string, duration time.Duration) {
	m.LoadsTotal.WithLabelValues(unit, outcome).Inc()
	m.LoadDuration.WithLabelValues(unit).Observe(duration.Seconds())
	if outcome == "success" {
		m.UnitsLoaded.Inc()
	}
}

// RecordDenial records one gate denial.
func (m *Metrics) RecordDenial(unit string) {
	m.GateDenials.WithLabelValues(unit).Inc()
}

// RecordNavigation records one navigation dispatch.
func (m *Metrics) RecordNavigation(status string) {
	m.NavigationsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
