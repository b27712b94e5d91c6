package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "turns_total",
			Help:      "Webhook turns by outcome",
		},
		[]string{"outcome"}, // "answered", "opener", "apology", "panic"
	)

	turnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "voicegw",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)
