package leads

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "lead_saves_total",
			Help:      "Lead persistence attempts by outcome",
		},
		[]string{"status"}, // "success", "error", "skipped", "disabled"
	)

	leadSinkDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "lead_sink_dropped_total",
			Help:      "Lead jobs dropped because the sink queue was full",
		},
	)
)
