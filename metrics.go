package distmat

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    computeCounter   prometheus.Counter
//	    computeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCompute(rows, workers int, duration time.Duration, err error) {
//	    p.computeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordCompute is called after each matrix computation.
	// rows is the dataset size, workers the effective worker count,
	// duration the total time taken. err is nil if successful.
	RecordCompute(rows, workers int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	RowsProcessed     atomic.Int64
}

// RecordCompute implements MetricsCollector.
func (c *BasicMetricsCollector) RecordCompute(rows, workers int, duration time.Duration, err error) {
	c.ComputeCount.Add(1)
	c.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.ComputeErrors.Add(1)
		return
	}
	c.RowsProcessed.Add(int64(rows))
}

// AverageComputeTime returns the mean computation duration, or 0 when no
// computations have been recorded.
func (c *BasicMetricsCollector) AverageComputeTime() time.Duration {
	count := c.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(c.ComputeTotalNanos.Load() / count)
}
