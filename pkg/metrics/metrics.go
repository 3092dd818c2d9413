package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokenshield"

// Outcome labels for authority requests.
const (
	OutcomeSuccess     = "success"
	OutcomeCached      = "cached"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

// Metrics holds the collectors for one process. A nil *Metrics records
// nothing, so callers never need to check.
type Metrics struct {
	registry *prometheus.Registry

	// requests counts authority calls.
	// Labels: dimension, outcome (success, cached, error, circuit_open)
	requests *prometheus.CounterVec

	// requestLatency measures round trips to the authority.
	// Labels: dimension
	requestLatency *prometheus.HistogramVec

	// analyses counts finished analyses.
	// Labels: level (SAFE, MODERATE, RISKY, DANGEROUS, failed)
	analyses *prometheus.CounterVec

	// overallScore tracks the distribution of aggregate scores.
	overallScore prometheus.Histogram

	// circuitState is 0 closed, 1 open, 2 half-open.
	circuitState prometheus.Gauge
}

// New registers the collectors on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests to the risk authority by dimension and outcome",
		}, []string{"dimension", "outcome"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Risk authority request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"dimension"}),
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "completed_total",
			Help:      "Token analyses by resulting safety level",
		}, []string{"level"}),
		overallScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "overall_score",
			Help:      "Distribution of aggregate safety scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		circuitState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "circuit_state",
			Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
	}
}

// RecordRequest records one authority call.
func (m *Metrics) RecordRequest(dimension, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(dimension, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeError {
		m.requestLatency.WithLabelValues(dimension).Observe(d.Seconds())
	}
}

// RecordAnalysis records a completed analysis and its score.
func (m *Metrics) RecordAnalysis(level string, score float64) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(level).Inc()
	m.overallScore.Observe(score)
}

// RecordAnalysisFailure counts an analysis that returned an error.
func (m *Metrics) RecordAnalysisFailure() {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues("failed").Inc()
}

// SetCircuitState publishes the breaker state.
func (m *Metrics) SetCircuitState(state int) {
	if m == nil {
		return
	}
	m.circuitState.Set(float64(state))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
