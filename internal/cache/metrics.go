package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleet_filter",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Number of TTL cache lookups that returned a live entry.",
	}, []string{"cache"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleet_filter",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Number of TTL cache lookups that found no live entry.",
	}, []string{"cache"})

	cacheSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleet_filter",
		Subsystem: "cache",
		Name:      "swept_total",
		Help:      "Number of expired entries removed by the sweeper.",
	}, []string{"cache"})
)
