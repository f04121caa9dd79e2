package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recommendationsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_generated_total",
		Help: "Number of recommendations generated",
	})

	recommendationEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_events_total",
		Help: "Number of recommendation lifecycle events recorded",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(recommendationsGeneratedTotal)
	prometheus.MustRegister(recommendationEventsTotal)
}
