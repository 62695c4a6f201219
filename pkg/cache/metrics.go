package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by entity kind and backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_hits_total",
			Help: "Total number of lookup cache hits",
		},
		[]string{"kind", "backend"}, // kind: "product"/"user", backend: "memory"/"redis"
	)

	// CacheMisses tracks cache misses by entity kind and backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_misses_total",
			Help: "Total number of lookup cache misses",
		},
		[]string{"kind", "backend"},
	)

	// CacheErrors tracks cache operation errors (Redis backend only; the
	// memory store cannot fail).
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set"
	)
)
