package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		gateDecisionsTotal,
		rateLimitRejectionsTotal,
	)
}

var (
	gateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Content gate outcomes by content type and result (full/teaser).",
		},
		[]string{"content_type", "result"},
	)

	rateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the attempt rate limiter, by route.",
		},
		[]string{"route"},
	)
)

func IncGateDecision(contentType string, full bool) {
	result := "teaser"
	if full {
		result = "full"
	}
	gateDecisionsTotal.WithLabelValues(norm(contentType), result).Inc()
}

func IncRateLimitRejection(route string) {
	rateLimitRejectionsTotal.WithLabelValues(norm(route)).Inc()
}
