package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiPromptTokens,
		aiFragmentsTotal,
		aiStreamLatencyMs,
	)
}

var (
	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Sum of estimated prompt (input) tokens per model.",
		},
		[]string{"model"},
	)

	aiFragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_stream_fragments_total",
			Help: "Fragments received from generation sources per model.",
		},
		[]string{"model"},
	)

	aiStreamLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_stream_latency_ms",
			Help:    "Full stream consumption latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000},
		},
		[]string{"model", "success"},
	)
)

func ObserveStream(model string, promptTokens, fragments int, latencyMs int64, success bool) {
	m := norm(model)
	aiPromptTokens.WithLabelValues(m).Add(float64(promptTokens))
	aiFragmentsTotal.WithLabelValues(m).Add(float64(fragments))
	aiStreamLatencyMs.WithLabelValues(m, strconv.FormatBool(success)).Observe(float64(latencyMs))
}
