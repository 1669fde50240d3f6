package schtree

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with schtree-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogBuild logs a tree construction.
func (l *Logger) LogBuild(ctx context.Context, points int, stats Stats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"points", points,
			"error", err,
		)
		return
	}

	l.InfoContext(ctx, "tree built",
		"points", stats.Points,
		"dimension", stats.Dimension,
		"leaves", stats.Leaves,
		"duration", duration,
	)
	l.DebugContext(ctx, "tree shape",
		"leaf_size", stats.LeafSize,
		"depth", stats.Depth,
		"min_leaf", stats.MinLeafPoints,
		"max_leaf", stats.MaxLeafPoints,
		"mean_leaf", stats.MeanLeafPoints,
		"owned", stats.Owned,
		"kernel", stats.Kernel,
	)
	if stats.ForcedLeaves > 0 {
		l.WarnContext(ctx, "inseparable points kept in oversized leaves",
			"forced_leaves", stats.ForcedLeaves,
			"max_leaf", stats.MaxLeafPoints,
			"leaf_size", stats.LeafSize,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, stats SearchStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
			"leaves_visited", stats.LeavesVisited,
			"points_scanned", stats.PointsScanned,
		)
	}
}

// LogBulkSearch logs a batch search operation.
func (l *Logger) LogBulkSearch(ctx context.Context, queries, k int, stats SearchStats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bulk search failed",
			"queries", queries,
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bulk search completed",
			"queries", queries,
			"k", k,
			"leaves_visited", stats.LeavesVisited,
			"points_scanned", stats.PointsScanned,
			"duration", duration,
		)
	}
}

// LogVerify logs a structural verification.
func (l *Logger) LogVerify(ctx context.Context, leaves int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "verification failed",
			"leaves", leaves,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "verification passed",
			"leaves", leaves,
		)
	}
}
