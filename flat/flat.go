// Package flat computes exact nearest neighbors by scanning every point.
//
// It is the reference the partition tree is validated against and uses the
// same (distance, index) ordering, so both produce identical results.
package flat

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/schtree/internal/vecmath"
	"github.com/hupe1980/schtree/knn"
)

// Search returns the k nearest points to query, sorted.
func Search[T vecmath.Float](points [][]T, query []T, k int) *knn.Result[T] {
	res := knn.New[T](k)
	if k > 0 {
		for i, p := range points {
			res.Insert(i, vecmath.Euclidean(query, p))
		}
	}
	res.Sort()
	return res
}

// BulkSearch runs Search for every query on up to workers goroutines and
// returns the results in query order. If workers is 0, GOMAXPROCS is used.
func BulkSearch[T vecmath.Float](ctx context.Context, points, queries [][]T, k, workers int) ([]*knn.Result[T], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*knn.Result[T], len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Search(points, q, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
