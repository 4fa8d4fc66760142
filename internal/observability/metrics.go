// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	TrialsSimulated *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	RunsCanceled    prometheus.Counter

	// Request metrics
	ScenarioRequests *prometheus.CounterVec
	ScenarioDuration prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	WSConnections    prometheus.Gauge

	// Coach metrics
	CoachOutcomes *prometheus.CounterVec
	CoachLatency  prometheus.Histogram
	CoachCache    *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "networth_lab"
	}
	factory := promauto.With(reg)

	return &Metrics{
		TrialsSimulated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trials_total",
			Help:      "Total number of Monte Carlo trials simulated by regime",
		}, []string{"regime"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Duration of one aggregator run in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"regime"}),
		RunsCanceled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_canceled_total",
			Help:      "Total number of aggregator runs aborted by context cancellation",
		}),

		ScenarioRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scenario",
			Name:      "requests_total",
			Help:      "Total number of scenario requests by status",
		}, []string{"status"}),
		ScenarioDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scenario",
			Name:      "duration_seconds",
			Help:      "End-to-end scenario assembly duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_connections",
			Help:      "Number of open scenario websocket connections",
		}),

		CoachOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coach",
			Name:      "outcomes_total",
			Help:      "Narrative coach outcomes (ok, fallback reason)",
		}, []string{"outcome"}),
		CoachLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "coach",
			Name:      "latency_seconds",
			Help:      "Narrative coach call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CoachCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coach",
			Name:      "cache_lookups_total",
			Help:      "Narrative cache lookups by result",
		}, []string{"result"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordRun records one aggregator run.
func RecordRun(regime string, trials int, durationSeconds float64) {
	DefaultMetrics.TrialsSimulated.WithLabelValues(regime).Add(float64(trials))
	DefaultMetrics.RunDuration.WithLabelValues(regime).Observe(durationSeconds)
}

// RecordRunCanceled increments the canceled runs counter.
func RecordRunCanceled() {
	DefaultMetrics.RunsCanceled.Inc()
}

// RecordScenario records a scenario request outcome.
func RecordScenario(status string, durationSeconds float64) {
	DefaultMetrics.ScenarioRequests.WithLabelValues(status).Inc()
	DefaultMetrics.ScenarioDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request by route template and status code.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}

// WSConnected adjusts the open websocket gauge by delta.
func WSConnected(delta int) {
	DefaultMetrics.WSConnections.Add(float64(delta))
}

// RecordCoach records a coach outcome and its latency.
func RecordCoach(outcome string, seconds float64) {
	DefaultMetrics.CoachOutcomes.WithLabelValues(outcome).Inc()
	DefaultMetrics.CoachLatency.Observe(seconds)
}

// RecordCacheLookup records a narrative cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CoachCache.WithLabelValues(result).Inc()
}
