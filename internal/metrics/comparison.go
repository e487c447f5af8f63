package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Comparison harness Prometheus metrics.
var (
	UnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relbench",
			Name:      "units_total",
			Help:      "Total number of (query, algorithm) units by outcome",
		},
		[]string{"algorithm", "status"},
	)

	UnitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relbench",
			Name:      "unit_duration_seconds",
			Help:      "Algorithm search latency per unit in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"algorithm"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relbench",
			Name:      "runs_total",
			Help:      "Total number of comparison runs by outcome",
		},
		[]string{"status"}, // "ok" / "incomplete" / "failed"
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "relbench",
			Name:      "run_duration_seconds",
			Help:      "Comparison run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
)

var harnessMetricsRegistered bool

// RegisterHarnessMetrics registers the comparison metrics. Must be called once from main.
func RegisterHarnessMetrics() {
	if harnessMetricsRegistered {
		return
	}
	prometheus.MustRegister(UnitsTotal)
	prometheus.MustRegister(UnitDuration)
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(RunDuration)
	harnessMetricsRegistered = true
}

// Recorder feeds harness telemetry into the Prometheus vectors.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// RecordUnit counts a unit and observes its latency. Skipped units never ran
// and are only counted.
func (r *Recorder) RecordUnit(algorithm, status string, latency time.Duration) {
	UnitsTotal.WithLabelValues(algorithm, status).Inc()
	if status != "skipped" {
		UnitDuration.WithLabelValues(algorithm).Observe(latency.Seconds())
	}
}

// RecordRun counts a run and observes its duration.
func (r *Recorder) RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}
