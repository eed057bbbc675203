package metrics

import (
	"heritage-access-platform/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		entitlementsGrantedTotal,
		entitlementsExpiredTotal,
		entitlementsActive,
	)
}

var (
	entitlementsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlements_granted_total",
			Help: "Entitlements created, by granting source.",
		},
		[]string{"source"},
	)

	entitlementsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlements_expired_total",
			Help: "Entitlements marked expired by the sweeper.",
		},
	)

	entitlementsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "entitlements_active",
			Help: "Current number of active entitlements by source.",
		},
		[]string{"source"},
	)
)

func IncEntitlementGranted(source model.SourceType) {
	entitlementsGrantedTotal.WithLabelValues(string(source)).Inc()
}

func IncEntitlementsExpired(count int) {
	entitlementsExpiredTotal.Add(float64(count))
}

func SetEntitlementsActive(counts map[model.SourceType]int) {
	sources := []model.SourceType{
		model.SourceSubscription,
		model.SourcePurchase,
		model.SourceTourCode,
		model.SourceSponsored,
		model.SourceAdminGrant,
	}
	for _, src := range sources {
		if count, ok := counts[src]; ok {
			entitlementsActive.WithLabelValues(string(src)).Set(float64(count))
		}
	}
}
