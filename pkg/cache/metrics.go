package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	hitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Count of cache hits by key namespace.",
		},
		[]string{"namespace"},
	)

	missesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Count of cache misses by key namespace.",
		},
		[]string{"namespace"},
	)

	degradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_degraded_total",
			Help: "Count of cache operations that failed and fell back to the origin.",
		},
		[]string{"namespace"},
	)
)

func init() {
	prometheus.MustRegister(hitsTotal, missesTotal, degradedTotal)
}
