package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks remote generation outcomes per call site. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "career_coach",
			Name:      "generations_total",
			Help:      "Remote generation calls by call site and outcome.",
		}, []string{"call_site", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "career_coach",
			Name:      "generation_duration_seconds",
			Help:      "Remote generation call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"call_site"}),
	}
	reg.MustRegister(m.generations, m.latency)
	return m
}

func (m *Metrics) observeGeneration(callSite string, outcome GenerationOutcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(callSite, string(outcome)).Inc()
	m.latency.WithLabelValues(callSite).Observe(elapsed.Seconds())
}
