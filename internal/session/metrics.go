package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	ResolveAttempts *prometheus.CounterVec
}

// NewMetrics registers the coordinator's collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synesth_requests_total",
				Help: "Coordinator requests by kind and outcome code",
			},
			[]string{"kind", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synesth_request_duration_seconds",
				Help:    "Time spent handling coordinator requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ResolveAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synesth_resolve_attempts_total",
				Help: "Video search attempts by outcome (hit, empty, error)",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration, m.ResolveAttempts)
	}
	return m
}
