package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		redemptionsTotal,
		redemptionConflictRetries,
		codesIssuedTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome (success or error kind).",
		},
		[]string{"outcome"},
	)

	redemptionConflictRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "redemption_conflict_retries_total",
			Help: "Transaction retries caused by contended access codes.",
		},
	)

	codesIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_codes_issued_total",
			Help: "Access codes created, by code type.",
		},
		[]string{"code_type"},
	)
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncRedemptionConflictRetry() {
	redemptionConflictRetries.Inc()
}

func AddCodesIssued(codeType string, n int) {
	codesIssuedTotal.WithLabelValues(norm(codeType)).Add(float64(n))
}
