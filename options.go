package schtree

import (
	"log/slog"
)

type options struct {
	copy             bool
	leafSize         int
	workers          int
	memoryLimit      int64
	queriesPerSecond float64
	queryBurst       int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Build.
type Option func(*options)

// WithCopy makes the tree keep a private contiguous copy of the points.
// Without it the tree references the caller's slices, which must then stay
// alive and unmodified for the tree's lifetime.
func WithCopy() Option {
	return func(o *options) {
		o.copy = true
	}
}

// WithLeafSize sets the largest population a node may hold without being
// split. If n <= 0, the default max(round(0.01·N), 10) is used.
//
// Smaller leaves give tighter bounds but more leaves to rank per query.
func WithLeafSize(n int) Option {
	return func(o *options) {
		o.leafSize = n
	}
}

// WithWorkers caps the number of queries BulkSearch runs concurrently.
// If n <= 0, GOMAXPROCS is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMemoryLimit bounds the bytes a private copy of the points may occupy.
// Build fails with ErrMemoryLimitExceeded if the copy would not fit.
// Only meaningful together with WithCopy.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithQueryRateLimit throttles Search and BulkSearch to qps queries per
// second with the given burst. Waiting honors the caller's context.
func WithQueryRateLimit(qps float64, burst int) Option {
	return func(o *options) {
		o.queriesPerSecond = qps
		o.queryBurst = burst
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &schtree.BasicMetricsCollector{}
//	tree, _ := schtree.Build(points, schtree.WithMetricsCollector(metrics))
//	// ... use tree ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := schtree.NewJSONLogger(slog.LevelInfo)
//	tree, _ := schtree.Build(points, schtree.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
