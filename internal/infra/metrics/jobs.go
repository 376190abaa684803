package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(generationsTotal, dispatchTotal, staleReapedTotal) }

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generations_total",
			Help: "Total number of generation tasks finished, labeled by final message status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generation_dispatch_total",
			Help: "Generation task enqueue attempts by dispatcher mode and result.",
		},
		[]string{"mode", "result"},
	)

	staleReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_stale_messages_reaped_total",
			Help: "PENDING AI messages failed by the reaper after their worker disappeared.",
		},
	)
)

func IncGeneration(status string) {
	generationsTotal.WithLabelValues(norm(status)).Inc()
}

func IncDispatch(mode string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	dispatchTotal.WithLabelValues(norm(mode), result).Inc()
}

func AddStaleReaped(n int64) {
	if n > 0 {
		staleReapedTotal.Add(float64(n))
	}
}
