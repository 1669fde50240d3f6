// Package schtree provides exact k-nearest-neighbor search over a static
// point set using a semi-convex-hull partition tree.
//
// The tree splits the points recursively by the bisector of two far apart
// points and then shrinks every leaf's half-spaces until they touch the
// leaf's points. A query computes a lower bound on its distance to every
// leaf, visits leaves in ascending bound order and stops as soon as no
// remaining leaf can improve the result. Results are exact: they match an
// exhaustive scan, ties included (equal distances order by point index).
//
// # Quick Start
//
//	tree, err := schtree.Build(points) // [][]float32 or [][]float64
//	if err != nil {
//	    return err
//	}
//	res, err := tree.Search(ctx, query, 10, schtree.WithSorted())
//	for _, n := range res.Neighbors() {
//	    fmt.Println(n.Index, n.Distance)
//	}
//
// # Batches
//
//	results, err := tree.BulkSearch(ctx, queries, 10)
//
// BulkSearch runs queries on a bounded worker pool and returns results in
// query order.
//
// # Ownership
//
// By default the tree references the caller's point slices. They must stay
// alive and must not be modified while the tree is in use. WithCopy makes
// the tree keep a private contiguous copy instead; WithMemoryLimit bounds
// the size of that copy.
//
// # Key Features
//
//   - Exact results, float32 or float64 points of any fixed dimension
//   - Deterministic construction, no tuning beyond the leaf size
//   - Allow-list filtering with roaring bitmaps
//   - Structured logging (log/slog) and pluggable metrics
//   - CPU-dispatched distance kernels (see package distance)
package schtree
