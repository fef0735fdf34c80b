package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for retrieval runs.
type Metrics struct {
	RequestsParsed   prometheus.Counter
	RetrievalRunning prometheus.Gauge

	// Per-backend dispatch metrics. labels: backend={public,mars}
	RequestsDispatched *prometheus.CounterVec
	DispatchErrors     *prometheus.CounterVec
	DispatchDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all retrieval metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsParsed,
		m.RetrievalRunning,
		m.RequestsDispatched,
		m.DispatchErrors,
		m.DispatchDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flex_control",
			Name:      "requests_parsed_total",
			Help:      "Total retrieval requests read from manifests.",
		}),
		RetrievalRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flex_control",
			Name:      "retrieval_running",
			Help:      "1 while a retrieval run is dispatching requests, 0 otherwise.",
		}),
		RequestsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flex_control",
			Name:      "requests_dispatched_total",
			Help:      "Retrieval requests handed to a backend.",
		}, []string{"backend"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flex_control",
			Name:      "dispatch_errors_total",
			Help:      "Retrieval requests a backend rejected.",
		}, []string{"backend"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flex_control",
			Name:      "dispatch_duration_seconds",
			Help:      "Time for a backend to accept one retrieval request.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"backend"}),
	}
}
