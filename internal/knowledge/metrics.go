package knowledge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts store operations.
	// Labels: operation (add, query, count, records, clear), result (success, validation_error, storage_error, error)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowledged",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of knowledge store operations by result",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks how long store operations take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "knowledged",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of knowledge store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ReadRetriesTotal counts transparent retries of read-phase failures.
	ReadRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowledged",
			Subsystem: "store",
			Name:      "read_retries_total",
			Help:      "Total number of retried read operations",
		},
		[]string{"operation"},
	)

	// CacheLookupsTotal counts query cache lookups.
	// Labels: result (hit, miss)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowledged",
			Subsystem: "store",
			Name:      "cache_lookups_total",
			Help:      "Total number of query cache lookups",
		},
		[]string{"result"},
	)

	// RecordsAddedTotal counts records committed by Add.
	RecordsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "knowledged",
			Subsystem: "store",
			Name:      "records_added_total",
			Help:      "Total number of records added",
		},
	)
)

// observe records the outcome and latency of one operation.
func observe(operation string, start time.Time, err error) {
	OperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case isValidation(err):
		return "validation_error"
	case isStorage(err):
		return "storage_error"
	default:
		return "error"
	}
}
