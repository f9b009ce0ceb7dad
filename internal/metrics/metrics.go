// Package metrics holds the Prometheus collectors and the optional HTTP
// listener that exposes them.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Document and operation metrics.
var (
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gumby",
			Name:      "documents_total",
			Help:      "Documents processed by loads, migrations and dumps",
		},
		[]string{"model", "operation", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gumby",
			Name:      "operation_duration_seconds",
			Help:      "Duration of index operations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"operation"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gumby",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gumby",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Register registers every gumby collector with reg. Registering twice with
// the same registry is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		DocumentsTotal, OperationDuration, httpRequestDuration, httpRequestsTotal,
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

// CountDocuments adds n documents of model to the counter, labelled by the
// outcome of err.
func CountDocuments(model, operation string, n int, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	DocumentsTotal.WithLabelValues(model, operation, status).Add(float64(n))
}

// ObserveSince records the time elapsed since start for operation.
func ObserveSince(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
