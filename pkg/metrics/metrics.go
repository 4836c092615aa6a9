// Package metrics records Prometheus metrics for dataframe operations. Every
// table transformation (build, sort, group, aggregate, select) reports its
// outcome, latency and the number of rows it touched.
//
// # Basic Usage
//
//	timer := metrics.NewTimer("sort")
//	out, err := sortTable()
//	metrics.Observe("sort", in.NumRows(), timer.Stop(), err)
//
// Recording can be switched off process-wide with SetEnabled(false), which is
// what the CLI does when observability.enable_metrics is false.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// StatusSuccess labels an operation that produced a table
	StatusSuccess = "success"
	// StatusFailure labels an operation that returned an error
	StatusFailure = "failure"
)

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled turns metric recording on or off.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether metric recording is on.
func Enabled() bool {
	return enabled.Load()
}

var (
	// OperationsTotal counts table operations by outcome.
	// Labels: operation (build/sort/group_by/aggregate/sum/select/reduce), status
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataframe_operations_total",
			Help: "Total number of table operations",
		},
		[]string{"operation", "status"},
	)

	// OperationLatency tracks operation latency in seconds.
	OperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataframe_operation_latency_seconds",
			Help: "Table operation latency in seconds",
			Buckets: []float64{
				1e-5, // 10μs - tiny tables
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms
				1,    // 1s - million-row sorts
				10,
			},
		},
		[]string{"operation"},
	)

	// RowsProcessed counts input rows consumed by operations.
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataframe_rows_processed_total",
			Help: "Total number of input rows processed by table operations",
		},
		[]string{"operation"},
	)

	// GroupsProduced tracks the number of distinct composite keys per GroupBy.
	GroupsProduced = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataframe_groups_produced",
			Help:    "Number of groups produced by a single GroupBy",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
)

// Observe records the outcome of one operation.
func Observe(operation string, rows int, duration time.Duration, err error) {
	if !Enabled() {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	RowsProcessed.WithLabelValues(operation).Add(float64(rows))
}

// ObserveGroups records the group count of a GroupBy.
func ObserveGroups(groups int) {
	if !Enabled() {
		return
	}
	GroupsProduced.Observe(float64(groups))
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the operation the timer was started for.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
