package partition

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/schtree/internal/geometry"
	"github.com/hupe1980/schtree/internal/queue"
	"github.com/hupe1980/schtree/internal/vecmath"
	"github.com/hupe1980/schtree/knn"
)

// SearchOptions controls a single search.
type SearchOptions struct {
	// Sorted finalizes the result into ascending (distance, index) order.
	Sorted bool

	// Filter restricts candidates to the point indices it contains.
	// A nil filter admits every point.
	Filter *roaring.Bitmap
}

// SearchStats counts the work done by one or more searches.
type SearchStats struct {
	Queries       int
	LeavesVisited int
	LeavesPruned  int
	PointsScanned int
}

// Add accumulates o into s.
func (s *SearchStats) Add(o SearchStats) {
	s.Queries += o.Queries
	s.LeavesVisited += o.LeavesVisited
	s.LeavesPruned += o.LeavesPruned
	s.PointsScanned += o.PointsScanned
}

// Search returns the exact k nearest neighbors of query.
//
// Leaves are visited in ascending (bound, leaf) order. Once the result is
// full, the first leaf whose bound exceeds the current k-th distance by more
// than the rounding slack ends the search: every later leaf has at least
// that bound. Leaves within the slack are still scanned, since a computed
// bound may overshoot the computed distance of a tied point, and ties must
// resolve by index exactly as an exhaustive scan would.
func (t *Tree[T]) Search(query []T, k int, opts SearchOptions) (*knn.Result[T], SearchStats) {
	res := knn.New[T](k)
	st := SearchStats{Queries: 1}
	if k <= 0 {
		return res, st
	}

	sc := t.contexts.Get()
	defer t.contexts.Put(sc)

	for i, leaf := range t.leaves {
		sc.Leaves.Append(queue.Item[T]{Leaf: i, Bound: geometry.DistanceToRegion(query, leaf.constraints)})
	}
	sc.Leaves.Init()

	tol, qnorm := t.slackFactor(), vecmath.Norm(query)

	for {
		item, ok := sc.Leaves.PopItem()
		if !ok {
			break
		}
		if res.IsFull() {
			maxDist := res.MaxDistance()
			if item.Bound > maxDist+tol*(qnorm+t.radius+maxDist) {
				break
			}
		}

		st.LeavesVisited++
		for _, idx := range t.leaves[item.Leaf].indices {
			if opts.Filter != nil && !opts.Filter.Contains(uint32(idx)) {
				continue
			}
			st.PointsScanned++
			res.Insert(idx, geometry.Distance(query, t.points[idx]))
		}
	}
	st.LeavesPruned = len(t.leaves) - st.LeavesVisited

	if opts.Sorted {
		res.Sort()
	}
	return res, st
}

// slackFactor is the relative rounding error allowed between a leaf bound
// and a point distance. Both come from dot products of dim terms, so the
// error grows with dim and with the magnitudes involved.
func (t *Tree[T]) slackFactor() T {
	return T(4*(t.dim+2)) * vecmath.Epsilon[T]()
}

// LeafBounds returns the lower-bound distance from query to every leaf, in
// leaf order.
func (t *Tree[T]) LeafBounds(query []T) []T {
	out := make([]T, len(t.leaves))
	for i, leaf := range t.leaves {
		out[i] = geometry.DistanceToRegion(query, leaf.constraints)
	}
	return out
}

// LeafIndices returns a copy of the point indices of leaf i.
func (t *Tree[T]) LeafIndices(i int) []int {
	return append([]int(nil), t.leaves[i].indices...)
}
