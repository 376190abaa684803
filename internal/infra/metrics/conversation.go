package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(submissionsTotal, flushesTotal, settlementsTotal) }

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_submissions_total",
			Help: "User message submissions by outcome.",
		},
		[]string{"outcome"}, // accepted | insufficient_credits | job_not_found | invalid | dispatch_failed | error
	)

	flushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_flushes_total",
			Help: "Intermediate streaming flushes by result.",
		},
		[]string{"result"}, // ok | skipped
	)

	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_settlements_total",
			Help: "Credit settlements after completed generations by result.",
		},
		[]string{"result"}, // charged | duplicate | failed
	)
)

func IncSubmission(outcome string) {
	submissionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncFlush(result string) {
	flushesTotal.WithLabelValues(norm(result)).Inc()
}

func IncSettlement(result string) {
	settlementsTotal.WithLabelValues(norm(result)).Inc()
}
