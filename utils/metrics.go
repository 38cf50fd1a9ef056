package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricScreeningCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marble_screening_count",
			Help: "Number of screenings, by resulting risk level",
		},
		[]string{"risk_level"},
	)

	MetricScreeningLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marble_screening_latency",
			Help:    "Duration of a screening (matching and scoring), in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	MetricScreeningMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marble_screening_matches",
			Help:    "Number of sanctions matches reported by a screening",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)
)
