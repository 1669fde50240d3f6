package schtree

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/hupe1980/schtree/internal/partition"
	"github.com/hupe1980/schtree/internal/resource"
	"github.com/hupe1980/schtree/internal/vecmath"
	"github.com/hupe1980/schtree/knn"
)

// Float is the set of scalar types points may use.
type Float = vecmath.Float

// Tree is an immutable exact KNN index. All methods are safe for concurrent use.
type Tree[T Float] struct {
	tree     *partition.Tree[T]
	logger   *Logger
	metrics  MetricsCollector
	rc       *resource.Controller
	reserved int64
	closed   atomic.Bool
}

// Stats describes the shape of a built tree.
type Stats struct {
	Points         int
	Dimension      int
	LeafSize       int
	Leaves         int
	ForcedLeaves   int
	Depth          int
	MinLeafPoints  int
	MaxLeafPoints  int
	MeanLeafPoints float64
	Owned          bool
	Kernel         string // kernel code in use, "generic" or "unrolled"
	CPU            string // detected CPU feature level
}

// Build constructs a tree over points. All points must have the same,
// non-zero dimension and finite coordinates.
func Build[T Float](points [][]T, optFns ...Option) (*Tree[T], error) {
	start := time.Now()
	o := applyOptions(optFns)

	t, err := build(points, o)
	duration := time.Since(start)
	err = translateError(err)

	o.metricsCollector.RecordBuild(len(points), duration, err)
	var stats Stats
	if t != nil {
		stats = t.Stats()
	}
	o.logger.LogBuild(context.Background(), len(points), stats, duration, err)

	if err != nil {
		return nil, err
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func MustBuild[T Float](points [][]T, optFns ...Option) *Tree[T] {
	t, err := Build(points, optFns...)
	if err != nil {
		panic(fmt.Sprintf("schtree: %v", err))
	}
	return t
}

func build[T Float](points [][]T, o options) (*Tree[T], error) {
	dim, err := partition.Validate(points)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: o.memoryLimit,
		MaxWorkers:       int64(o.workers),
		QueriesPerSecond: o.queriesPerSecond,
		QueryBurst:       o.queryBurst,
	})

	var reserved int64
	if o.copy {
		reserved = partition.CopySize[T](len(points), dim)
		if err := rc.AcquireMemory(reserved); err != nil {
			return nil, fmt.Errorf("private copy of %d bytes: %w", reserved, err)
		}
	}

	pt, err := partition.Build(points, partition.Config{
		LeafSize: o.leafSize,
		Copy:     o.copy,
	})
	if err != nil {
		rc.ReleaseMemory(reserved)
		return nil, err
	}

	return &Tree[T]{
		tree:     pt,
		logger:   o.logger,
		metrics:  o.metricsCollector,
		rc:       rc,
		reserved: reserved,
	}, nil
}

// Len returns the number of indexed points.
func (t *Tree[T]) Len() int { return t.tree.Len() }

// Dimension returns the dimensionality of the points.
func (t *Tree[T]) Dimension() int { return t.tree.Dimension() }

// Point returns the i-th point. The returned slice must not be modified.
func (t *Tree[T]) Point(i int) []T { return t.tree.Point(i) }

// MemoryUsage returns the bytes reserved for a private copy of the points.
func (t *Tree[T]) MemoryUsage() int64 { return t.rc.MemoryUsage() }

// Stats returns tree statistics.
func (t *Tree[T]) Stats() Stats {
	s := t.tree.Stats()
	return Stats{
		Points:         s.Points,
		Dimension:      s.Dimension,
		LeafSize:       s.LeafSize,
		Leaves:         s.Leaves,
		ForcedLeaves:   s.ForcedLeaves,
		Depth:          s.Depth,
		MinLeafPoints:  s.MinLeafPoints,
		MaxLeafPoints:  s.MaxLeafPoints,
		MeanLeafPoints: s.MeanLeafPoints,
		Owned:          s.Owned,
		Kernel:         vecmath.KernelName(),
		CPU:            vecmath.ActiveISA().String(),
	}
}

// Search returns the exact k nearest neighbors of query. The result holds
// min(k, Len()) neighbors, or fewer when a filter excludes points.
func (t *Tree[T]) Search(ctx context.Context, query []T, k int, optFns ...SearchOption) (*knn.Result[T], error) {
	start := time.Now()
	so := applySearchOptions(optFns)

	res, st, err := t.search(ctx, query, k, so)
	duration := time.Since(start)
	err = translateError(err)

	stats := fromPartitionStats(st)
	if so.stats != nil {
		*so.stats = stats
	}
	t.metrics.RecordSearch(k, stats, duration, err)
	found := 0
	if res != nil {
		found = res.Len()
	}
	t.logger.LogSearch(ctx, k, found, stats, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Tree[T]) search(ctx context.Context, query []T, k int, so searchOptions) (*knn.Result[T], partition.SearchStats, error) {
	if err := t.checkQuery(-1, query, k); err != nil {
		return nil, partition.SearchStats{}, err
	}
	if err := t.rc.WaitQuery(ctx); err != nil {
		return nil, partition.SearchStats{}, err
	}
	res, st := t.tree.Search(query, k, so.partition())
	return res, st, nil
}

// BulkSearch runs Search for every query in parallel and returns the
// results in query order. Cancelling ctx stops scheduling further queries.
func (t *Tree[T]) BulkSearch(ctx context.Context, queries [][]T, k int, optFns ...SearchOption) ([]*knn.Result[T], error) {
	start := time.Now()
	so := applySearchOptions(optFns)

	results, st, err := t.bulkSearch(ctx, queries, k, so)
	duration := time.Since(start)
	err = translateError(err)

	stats := fromPartitionStats(st)
	if so.stats != nil {
		*so.stats = stats
	}
	t.metrics.RecordBulkSearch(len(queries), k, stats, duration, err)
	t.logger.LogBulkSearch(ctx, len(queries), k, stats, duration, err)

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (t *Tree[T]) bulkSearch(ctx context.Context, queries [][]T, k int, so searchOptions) ([]*knn.Result[T], partition.SearchStats, error) {
	for i, q := range queries {
		if err := t.checkQuery(i, q, k); err != nil {
			return nil, partition.SearchStats{}, err
		}
	}

	return t.tree.BulkSearch(ctx, queries, k, so.partition(), partition.BulkConfig{
		Workers: t.rc.MaxWorkers(),
		Acquire: func(ctx context.Context) error {
			if err := t.rc.WaitQuery(ctx); err != nil {
				return err
			}
			return t.rc.AcquireWorker(ctx)
		},
		Release: t.rc.ReleaseWorker,
	})
}

// checkQuery validates a query; index is its position in a batch or -1.
func (t *Tree[T]) checkQuery(index int, query []T, k int) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if k <= 0 {
		return ErrInvalidK
	}
	if len(query) != t.tree.Dimension() {
		return &ErrDimensionMismatch{Index: index, Expected: t.tree.Dimension(), Actual: len(query)}
	}
	for _, v := range query {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			if index < 0 {
				return ErrNonFinite
			}
			return fmt.Errorf("%w: query %d", ErrNonFinite, index)
		}
	}
	return nil
}

// Verify checks the structural invariants of the tree: every leaf point lies
// inside all of its leaf's half-spaces and the leaves partition [0, Len()).
// A non-nil result is an *InvariantError and indicates a construction defect.
func (t *Tree[T]) Verify() error {
	err := translateError(t.tree.Verify())
	t.logger.LogVerify(context.Background(), t.tree.NumLeaves(), err)
	return err
}
