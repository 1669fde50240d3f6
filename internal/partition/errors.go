package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPointSet is returned when Build receives no points.
	ErrEmptyPointSet = errors.New("partition: empty point set")

	// ErrZeroDimension is returned when the first point has no coordinates.
	ErrZeroDimension = errors.New("partition: zero dimension")
)

// DimensionError reports a point whose length differs from the tree's dimension.
type DimensionError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("partition: point %d has dimension %d, expected %d", e.Index, e.Actual, e.Expected)
}

// InvariantError describes the first structural violation found by Verify.
type InvariantError struct {
	Leaf   int
	Point  int
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Leaf < 0 {
		return "partition: invariant violated: " + e.Reason
	}
	if e.Point < 0 {
		return fmt.Sprintf("partition: invariant violated in leaf %d: %s", e.Leaf, e.Reason)
	}
	return fmt.Sprintf("partition: invariant violated in leaf %d, point %d: %s", e.Leaf, e.Point, e.Reason)
}

// ErrNonFinite is returned for points with NaN or infinite coordinates.
var ErrNonFinite = errors.New("partition: non-finite coordinate")
