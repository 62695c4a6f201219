// Package metrics provides the Prometheus registry reference for the
// foodfast services. All metrics are defined in their respective packages
// (lookup, resolve, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by all services.
// Metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Lookup Metrics (pkg/lookup):
//   - lookup_requests_total{resource, mode, status} (Counter): Remote lookup
//     requests; mode is "batch" or "single", status is the HTTP status or
//     "network_error"/"malformed".
//   - lookup_request_duration_seconds{resource, mode} (Histogram): Remote
//     lookup latency.
//
// Resolver Metrics (pkg/resolve):
//   - resolver_keys_total{kind, path, outcome} (Counter): Keys settled per
//     pass; path is "cache", "batch" or "fallback", outcome is "resolved"
//     or "absent".
//   - resolver_fallbacks_total{kind} (Counter): Passes that fell back to
//     per-key fetches.
//   - resolver_duration_seconds{kind} (Histogram): Full pass duration.
//
// Cache Metrics (pkg/cache):
//   - lookup_cache_hits_total{kind, backend} (Counter): Cache hits.
//   - lookup_cache_misses_total{kind, backend} (Counter): Cache misses.
//   - lookup_cache_errors_total{backend, operation} (Counter): Cache
//     operation errors (Redis backend only).
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(lookup_cache_hits_total[5m])) /
//   (sum(rate(lookup_cache_hits_total[5m])) + sum(rate(lookup_cache_misses_total[5m])))
//
//   # Fallback Rate
//   rate(resolver_fallbacks_total[5m])
//
//   # P95 Lookup Latency
//   histogram_quantile(0.95, rate(lookup_request_duration_seconds_bucket[5m]))
