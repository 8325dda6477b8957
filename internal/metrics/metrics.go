package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts engine operations by name and outcome
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_operations_total",
		Help: "Number of ticketing operations by outcome",
	}, []string{"operation", "outcome"})

	// OperationDuration tracks engine operation latency
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatepass_operation_duration_seconds",
		Help:    "Latency of ticketing operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_http_requests_total",
		Help: "Number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Observe records one engine operation
func Observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
