package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		askRequestsTotal,
		askTokensTotal,
	)
}

var (
	askRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ask_requests_total",
			Help: "Ask assistant requests by access tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	askTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ask_tokens_total",
			Help: "Tokens consumed by the Ask assistant per provider and direction.",
		},
		[]string{"provider", "direction"},
	)
)

func IncAskRequest(tier, outcome string) {
	askRequestsTotal.WithLabelValues(norm(tier), norm(outcome)).Inc()
}

func AddAskTokens(provider string, in, out int) {
	askTokensTotal.WithLabelValues(norm(provider), "in").Add(float64(in))
	askTokensTotal.WithLabelValues(norm(provider), "out").Add(float64(out))
}
