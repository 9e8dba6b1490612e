package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks price cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_cache_hits_total",
			Help: "Total number of price cache hits",
		},
	)

	// CacheMisses tracks price cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_cache_misses_total",
			Help: "Total number of price cache misses",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
