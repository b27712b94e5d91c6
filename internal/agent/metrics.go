package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "llm_calls_total",
			Help:      "Model completions by outcome",
		},
		[]string{"status"},
	)

	llmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "voicegw",
			Name:      "llm_duration_seconds",
			Help:      "Model completion latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voicegw",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation latency",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5},
		},
		[]string{"tool"},
	)

	toolRoundsExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voicegw",
			Name:      "tool_rounds_exhausted_total",
			Help:      "Turns that hit the tool round cap before a final answer",
		},
	)
)
