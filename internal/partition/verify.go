package partition

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Verify checks the structural invariants of the tree:
//   - every point of a leaf satisfies every constraint of that leaf,
//   - leaf index sets are pairwise disjoint and cover [0, N),
//   - only forced leaves exceed the leaf size threshold.
//
// It returns an *InvariantError describing the first violation found.
func (t *Tree[T]) Verify() error {
	n := len(t.points)
	seen := roaring.New()

	for li, leaf := range t.leaves {
		if len(leaf.indices) == 0 {
			return &InvariantError{Leaf: li, Point: -1, Reason: "empty leaf"}
		}
		if !leaf.forced && len(leaf.indices) > t.leafSize {
			return &InvariantError{Leaf: li, Point: -1, Reason: fmt.Sprintf("holds %d points, threshold is %d", len(leaf.indices), t.leafSize)}
		}

		for _, idx := range leaf.indices {
			if idx < 0 || idx >= n {
				return &InvariantError{Leaf: li, Point: idx, Reason: "index out of range"}
			}
			if !seen.CheckedAdd(uint32(idx)) {
				return &InvariantError{Leaf: li, Point: idx, Reason: "index assigned to more than one leaf"}
			}
			p := t.points[idx]
			for ci, c := range leaf.constraints {
				if !c.Contains(p) {
					return &InvariantError{Leaf: li, Point: idx, Reason: fmt.Sprintf("outside constraint %d (%s)", ci, c)}
				}
			}
		}
	}

	if got := seen.GetCardinality(); got != uint64(n) {
		return &InvariantError{Leaf: -1, Point: -1, Reason: fmt.Sprintf("leaves hold %d points, expected %d", got, n)}
	}
	return nil
}
