package distmat

import (
	"github.com/veslink/distmat/distance"
	"github.com/veslink/distmat/resource"
)

type options struct {
	workers    int
	metric     distance.Metric
	fn         distance.Func
	logger     *Logger
	collector  MetricsCollector
	controller *resource.Controller
}

func defaultOptions() options {
	return options{
		metric:    distance.MetricEuclidean,
		logger:    NoopLogger(),
		collector: NoopMetricsCollector{},
	}
}

// Option configures matrix computation behavior.
type Option func(*options)

// WithWorkers sets the number of partitions (and goroutines) used by the
// builder. 0 selects a default derived from runtime.GOMAXPROCS; 1 forces
// the sequential path. The effective count is clamped to the row count.
// Negative values are rejected with ErrInvalidWorkers.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithMetric selects the distance metric. Default is MetricEuclidean.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithDistanceFunc overrides the metric with a custom distance function.
// The function is called with equal-length rows; the dataset is validated
// before any call.
func WithDistanceFunc(fn distance.Func) Option {
	return func(o *options) {
		o.fn = fn
	}
}

// WithLogger configures structured logging for computations.
//
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures operational metrics collection.
//
// If nil is passed, metrics stay disabled.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c != nil {
			o.collector = c
		}
	}
}

// WithController bounds the computation with a resource controller:
// the builder acquires a job slot for the duration of the run.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}
