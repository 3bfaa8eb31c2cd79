package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits by backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of fresh product cache hits",
		},
		[]string{"backend"}, // "file", "redis"
	)

	// CacheMisses tracks lookups for unknown product ids by backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of product cache misses",
		},
		[]string{"backend"},
	)

	// CacheStale tracks lookups that found an entry past the staleness
	// window, by backend.
	CacheStale = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_stale_total",
			Help: "Total number of product cache entries past the staleness window",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors by backend and operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "put"
	)
)
