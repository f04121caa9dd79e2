package bonus

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_claims_total",
			Help: "Count of bonus claim transitions by resulting status and bonus type.",
		},
		[]string{"status", "bonus_type"},
	)

	claimRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_claim_rejections_total",
			Help: "Count of rejected claim attempts by rule.",
		},
		[]string{"rule"},
	)
)

func init() {
	prometheus.MustRegister(claimsTotal, claimRejectionsTotal)
}
