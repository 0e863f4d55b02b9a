package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics are registered on the registry passed to NewMetrics so tests can
// use a private one.
type Metrics struct {
	Runs       *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	WaterUsed  *prometheus.HistogramVec
	SinkErrors prometheus.Counter
	Duplicates prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irrigation",
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Scheduling runs by algorithm, source and outcome.",
		}, []string{"algorithm", "source", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "irrigation",
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Time spent validating and allocating one request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"algorithm"}),
		WaterUsed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "irrigation",
			Subsystem: "scheduler",
			Name:      "water_used_ratio",
			Help:      "Share of the water budget allocated by a run.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"algorithm"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irrigation",
			Subsystem: "scheduler",
			Name:      "audit_write_errors_total",
			Help:      "Audit points that could not be written.",
		}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irrigation",
			Subsystem: "scheduler",
			Name:      "duplicate_requests_total",
			Help:      "Broker redeliveries dropped before scheduling.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Duration, m.WaterUsed, m.SinkErrors, m.Duplicates)
	}
	return m
}
