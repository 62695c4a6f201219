package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for remote lookup operations.
var (
	lookupRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_requests_total",
		Help: "Total remote lookup requests by resource, mode and outcome",
	}, []string{"resource", "mode", "status"}) // mode: "batch"/"single"

	lookupRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lookup_request_duration_seconds",
		Help:    "Remote lookup request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource", "mode"})
)
