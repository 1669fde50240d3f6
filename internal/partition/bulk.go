package partition

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/schtree/knn"
)

// BulkConfig controls BulkSearch scheduling.
type BulkConfig struct {
	// Workers caps concurrently running queries. If 0, GOMAXPROCS is used.
	Workers int

	// Acquire, if set, is called before each query. An error aborts the batch.
	Acquire func(ctx context.Context) error

	// Release, if set, is called after each query whose Acquire succeeded.
	Release func()
}

// BulkSearch runs Search for every query in parallel. Results are returned
// in query order; each worker writes only its own slot. Cancelling ctx stops
// scheduling further queries and returns ctx's error.
func (t *Tree[T]) BulkSearch(ctx context.Context, queries [][]T, k int, opts SearchOptions, cfg BulkConfig) ([]*knn.Result[T], SearchStats, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*knn.Result[T], len(queries))
	stats := make([]SearchStats, len(queries))

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
			if cfg.Acquire != nil {
				if err := cfg.Acquire(gctx); err != nil {
					return err
				}
			}
			if cfg.Release != nil {
				defer cfg.Release()
			}
			results[i], stats[i] = t.Search(q, k, opts)
			return nil
		})
	}

	var total SearchStats
	if err := g.Wait(); err != nil {
		return nil, total, err
	}
	if err := ctx.Err(); err != nil {
		return nil, total, err
	}

	for _, s := range stats {
		total.Add(s)
	}
	return results, total, nil
}
