package schtree

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schtree/flat"
	"github.com/hupe1980/schtree/internal/partition"
	"github.com/hupe1980/schtree/knn"
	"github.com/hupe1980/schtree/testutil"
)

func TestBuild(t *testing.T) {
	t.Run("Errors", func(t *testing.T) {
		_, err := Build[float32](nil)
		assert.ErrorIs(t, err, ErrEmptyPointSet)

		_, err = Build([][]float32{{}})
		var invDim *ErrInvalidDimension
		require.ErrorAs(t, err, &invDim)
		assert.Equal(t, 0, invDim.Dimension)

		_, err = Build([][]float64{{1, 2}, {1}})
		var dimErr *ErrDimensionMismatch
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 1, dimErr.Index)
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 1, dimErr.Actual)
		assert.NotNil(t, errors.Unwrap(dimErr))

		_, err = Build([][]float64{{math.NaN()}})
		assert.ErrorIs(t, err, ErrNonFinite)
	})

	t.Run("MustBuild", func(t *testing.T) {
		assert.Panics(t, func() { MustBuild[float32](nil) })
		assert.NotPanics(t, func() { MustBuild([][]float32{{1}}) })
	})

	t.Run("Accessors", func(t *testing.T) {
		points := testutil.NewRNG(1).UniformVectors(120, 5)
		tree := MustBuild(points)

		assert.Equal(t, 120, tree.Len())
		assert.Equal(t, 5, tree.Dimension())
		assert.Equal(t, points[7], tree.Point(7))
		assert.Equal(t, int64(0), tree.MemoryUsage())

		s := tree.Stats()
		assert.Equal(t, 120, s.Points)
		assert.Equal(t, 10, s.LeafSize)
		assert.Contains(t, []string{"generic", "unrolled"}, s.Kernel)
		assert.NotEmpty(t, s.CPU)
		assert.False(t, s.Owned)
		require.NoError(t, tree.Verify())
	})

	t.Run("LeafSize", func(t *testing.T) {
		points := testutil.NewRNG(2).UniformVectors(500, 3)
		tree := MustBuild(points, WithLeafSize(4))
		s := tree.Stats()
		assert.Equal(t, 4, s.LeafSize)
		assert.LessOrEqual(t, s.MaxLeafPoints, 4)
	})
}

func TestBuild_Copy(t *testing.T) {
	points := testutil.NewRNG(3).UniformVectors(100, 4)

	t.Run("Owned", func(t *testing.T) {
		tree := MustBuild(points, WithCopy())
		assert.True(t, tree.Stats().Owned)
		assert.Positive(t, tree.MemoryUsage())
		assert.NotSame(t, &points[0][0], &tree.Point(0)[0])

		require.NoError(t, tree.Close())
		assert.Equal(t, int64(0), tree.MemoryUsage())
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		_, err := Build(points, WithCopy(), WithMemoryLimit(64))
		assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

		tree, err := Build(points, WithCopy(), WithMemoryLimit(1<<20))
		require.NoError(t, err)
		assert.Positive(t, tree.MemoryUsage())
	})

	t.Run("LimitIgnoredWithoutCopy", func(t *testing.T) {
		_, err := Build(points, WithMemoryLimit(1))
		assert.NoError(t, err)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4)
	points := rng.ClusteredVectors(3000, 13, 10, 0.05)
	tree := MustBuild(points)

	t.Run("Exact", func(t *testing.T) {
		queries := append(rng.UniformRangeVectors(100, 13, -1, 1), points[:100]...)
		for i, q := range queries {
			got, err := tree.Search(ctx, q, 25)
			require.NoError(t, err)
			require.NoError(t, testutil.CompareResults(flat.Search(points, q, 25), got), "query %d", i)
		}
	})

	t.Run("Sorted", func(t *testing.T) {
		res, err := tree.Search(ctx, points[10], 5, WithSorted())
		require.NoError(t, err)
		assert.True(t, res.Sorted())
		assert.Equal(t, 10, res.Neighbors()[0].Index)
		assert.Equal(t, float32(0), res.Neighbors()[0].Distance)
	})

	t.Run("Stats", func(t *testing.T) {
		var st SearchStats
		_, err := tree.Search(ctx, points[0], 1, WithSearchStats(&st))
		require.NoError(t, err)
		assert.Equal(t, 1, st.Queries)
		assert.Positive(t, st.LeavesVisited)
		assert.Equal(t, tree.Stats().Leaves, st.LeavesVisited+st.LeavesPruned)
	})

	t.Run("Filter", func(t *testing.T) {
		allow := roaring.BitmapOf(1, 2, 3)
		res, err := tree.Search(ctx, points[0], 10, WithFilter(allow), WithSorted())
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3}, res.Indices())
	})

	t.Run("KLargerThanN", func(t *testing.T) {
		small := MustBuild([][]float32{{0}, {1}, {2}})
		res, err := small.Search(ctx, []float32{1.2}, 10, WithSorted())
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 0}, res.Indices())
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := tree.Search(ctx, points[0], 0)
		assert.ErrorIs(t, err, ErrInvalidK)

		_, err = tree.Search(ctx, []float32{1, 2}, 1)
		var dimErr *ErrDimensionMismatch
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, -1, dimErr.Index)
		assert.Equal(t, 13, dimErr.Expected)
		assert.Equal(t, "dimension mismatch: expected 13, got 2", dimErr.Error())

		bad := append([]float32(nil), points[0]...)
		bad[3] = float32(math.Inf(-1))
		_, err = tree.Search(ctx, bad, 1)
		assert.ErrorIs(t, err, ErrNonFinite)
	})
}

func TestSearch_FivePoints(t *testing.T) {
	points := [][]float64{{0, 0}, {10, 0}, {0, 10}, {10, 10}, {5, 5}}
	tree := MustBuild(points, WithLeafSize(1))
	require.NoError(t, tree.Verify())

	res, err := tree.Search(context.Background(), []float64{5, 5}, 3, WithSorted())
	require.NoError(t, err)
	assert.Equal(t, []knn.Neighbor[float64]{
		{Index: 4, Distance: 0},
		{Index: 0, Distance: math.Sqrt(50)},
		{Index: 1, Distance: math.Sqrt(50)},
	}, res.Neighbors())
}

func TestSearch_Concurrent(t *testing.T) {
	rng := testutil.NewRNG(5)
	points := rng.UniformVectors(2000, 6)
	tree := MustBuild(points)
	queries := rng.UniformVectors(64, 6)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, q := range queries {
				got, err := tree.Search(context.Background(), q, 8)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, testutil.CompareResults(flat.Search(points, q, 8), got))
			}
		}()
	}
	wg.Wait()
}

func TestBulkSearch(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(6)
	points := rng.UniformVectors(2000, 8)
	queries := rng.UniformVectors(100, 8)

	t.Run("MatchesFlat", func(t *testing.T) {
		tree := MustBuild(points, WithWorkers(3))
		var st SearchStats
		got, err := tree.BulkSearch(ctx, queries, 10, WithSorted(), WithSearchStats(&st))
		require.NoError(t, err)
		require.Len(t, got, len(queries))
		assert.Equal(t, len(queries), st.Queries)

		want, err := flat.BulkSearch(ctx, points, queries, 10, 0)
		require.NoError(t, err)
		for i := range queries {
			assert.Equal(t, want[i].Neighbors(), got[i].Neighbors(), "query %d", i)
		}
	})

	t.Run("ValidatesQueries", func(t *testing.T) {
		tree := MustBuild(points)
		bad := append([][]float32{}, queries[:3]...)
		bad = append(bad, []float32{1})

		_, err := tree.BulkSearch(ctx, bad, 10)
		var dimErr *ErrDimensionMismatch
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 3, dimErr.Index)

		_, err = tree.BulkSearch(ctx, queries, -1)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("Canceled", func(t *testing.T) {
		tree := MustBuild(points)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := tree.BulkSearch(cctx, queries, 10)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("RateLimited", func(t *testing.T) {
		tree := MustBuild(points, WithQueryRateLimit(0.001, 1))
		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := tree.BulkSearch(tctx, queries[:5], 1)
		assert.Error(t, err)
	})
}

func TestSearch_RateLimited(t *testing.T) {
	tree := MustBuild([][]float32{{0}, {1}}, WithQueryRateLimit(0.001, 1))

	_, err := tree.Search(context.Background(), []float32{0}, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tree.Search(ctx, []float32{0}, 1)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	tree := MustBuild([][]float32{{0}, {1}}, WithCopy())
	require.NoError(t, tree.Close())
	require.NoError(t, tree.Close())

	_, err := tree.Search(context.Background(), []float32{0}, 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = tree.BulkSearch(context.Background(), [][]float32{{0}}, 1)
	assert.ErrorIs(t, err, ErrClosed)

	var nilTree *Tree[float32]
	assert.NoError(t, nilTree.Close())
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}

	_, err := Build[float32](nil, WithMetricsCollector(mc))
	require.Error(t, err)

	points := testutil.NewRNG(7).UniformVectors(300, 3)
	tree := MustBuild(points, WithMetricsCollector(mc))

	_, err = tree.Search(ctx, points[0], 3)
	require.NoError(t, err)
	_, err = tree.Search(ctx, points[0], 0)
	require.Error(t, err)
	_, err = tree.BulkSearch(ctx, points[:10], 3)
	require.NoError(t, err)

	s := mc.GetStats()
	assert.Equal(t, int64(2), s.BuildCount)
	assert.Equal(t, int64(1), s.BuildErrors)
	assert.Equal(t, int64(2), s.SearchCount)
	assert.Equal(t, int64(1), s.SearchErrors)
	assert.Equal(t, int64(1), s.BulkSearchCount)
	assert.Equal(t, int64(10), s.BulkSearchQueries)
	assert.Positive(t, s.PointsScanned)
	assert.Positive(t, s.LeavesVisited)

	assert.NotPanics(t, func() {
		MustBuild(points, WithMetricsCollector(nil), WithLogger(nil))
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	identical := make([][]float32, 50)
	for i := range identical {
		identical[i] = []float32{1, 1}
	}
	tree := MustBuild(identical, WithLogger(logger))
	_, err := tree.Search(context.Background(), []float32{0, 0}, 2)
	require.NoError(t, err)
	require.NoError(t, tree.Verify())

	out := buf.String()
	assert.Contains(t, out, `"msg":"tree built"`)
	assert.Contains(t, out, `"msg":"tree shape"`)
	assert.Contains(t, out, `"forced_leaves":1`)
	assert.Contains(t, out, `"msg":"search completed"`)
	assert.Contains(t, out, `"msg":"verification passed"`)

	buf.Reset()
	_, _ = Build[float32](nil, WithLogger(logger))
	assert.Contains(t, buf.String(), `"msg":"build failed"`)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	cause := &partition.InvariantError{Leaf: 2, Point: 5, Reason: "outside constraint 0"}
	err := translateError(cause)

	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 2, invErr.Leaf)
	assert.Equal(t, 5, invErr.Point)
	assert.Equal(t, "outside constraint 0", invErr.Reason)
	assert.Contains(t, invErr.Error(), "leaf 2, point 5")
	assert.ErrorIs(t, err, cause)

	other := errors.New("other")
	assert.Same(t, other, translateError(other))
}
