package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts store operations by name and outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtrove_store_operations_total",
		Help: "Total number of data store operations",
	}, []string{"operation", "outcome"})

	// StorageCommitLatency records batch commit latency by backend.
	StorageCommitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rtrove_storage_commit_latency_seconds",
		Help:    "Key-value batch commit latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	// StorageErrors counts backend errors by backend and command.
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtrove_storage_errors_total",
		Help: "Total number of key-value storage errors",
	}, []string{"backend", "command"})

	// ChatRollbacks counts optimistic chat messages withdrawn after a failed write.
	ChatRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtrove_chat_rollbacks_total",
		Help: "Total number of optimistic chat messages rolled back",
	})
)

// RecordOperation counts one store operation.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackCommit returns a function that records commit latency when called (e.g. defer).
func TrackCommit(backend string) func() {
	start := time.Now()
	return func() {
		StorageCommitLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	}
}
