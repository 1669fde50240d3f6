package schtree

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
//	    searchHistogram prometheus.Histogram
//	    pointsScanned   prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordSearch(k int, stats schtree.SearchStats, d time.Duration, err error) {
//	    p.searchHistogram.Observe(d.Seconds())
//	    p.pointsScanned.Add(float64(stats.PointsScanned))
//	}
type MetricsCollector interface {
	// RecordBuild is called after each Build.
	// points is the size of the input, err is nil if successful.
	RecordBuild(points int, duration time.Duration, err error)

	// RecordSearch is called after each single search.
	RecordSearch(k int, stats SearchStats, duration time.Duration, err error)

	// RecordBulkSearch is called after each batch search.
	// stats holds the totals over all queries of the batch.
	RecordBulkSearch(queries, k int, stats SearchStats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)                         {}
func (NoopMetricsCollector) RecordSearch(int, SearchStats, time.Duration, error)           {}
func (NoopMetricsCollector) RecordBulkSearch(int, int, SearchStats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildTotalNanos   atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	BulkSearchCount   atomic.Int64
	BulkSearchQueries atomic.Int64
	BulkSearchErrors  atomic.Int64
	LeavesVisited     atomic.Int64
	LeavesPruned      atomic.Int64
	PointsScanned     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, stats SearchStats, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.addScan(stats)
}

// RecordBulkSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBulkSearch(queries, k int, stats SearchStats, duration time.Duration, err error) {
	b.BulkSearchCount.Add(1)
	b.BulkSearchQueries.Add(int64(queries))
	if err != nil {
		b.BulkSearchErrors.Add(1)
		return
	}
	b.addScan(stats)
}

func (b *BasicMetricsCollector) addScan(stats SearchStats) {
	b.LeavesVisited.Add(int64(stats.LeavesVisited))
	b.LeavesPruned.Add(int64(stats.LeavesPruned))
	b.PointsScanned.Add(int64(stats.PointsScanned))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildAvgNanos:     avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		BulkSearchCount:   b.BulkSearchCount.Load(),
		BulkSearchQueries: b.BulkSearchQueries.Load(),
		BulkSearchErrors:  b.BulkSearchErrors.Load(),
		LeavesVisited:     b.LeavesVisited.Load(),
		LeavesPruned:      b.LeavesPruned.Load(),
		PointsScanned:     b.PointsScanned.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildErrors       int64
	BuildAvgNanos     int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	BulkSearchCount   int64
	BulkSearchQueries int64
	BulkSearchErrors  int64
	LeavesVisited     int64
	LeavesPruned      int64
	PointsScanned     int64
}
