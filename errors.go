package schtree

import (
	"errors"
	"fmt"

	"github.com/hupe1980/schtree/internal/partition"
	"github.com/hupe1980/schtree/internal/resource"
)

var (
	// ErrEmptyPointSet is returned when Build receives no points.
	ErrEmptyPointSet = errors.New("empty point set")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNonFinite is returned for points or queries with NaN or infinite coordinates.
	ErrNonFinite = errors.New("non-finite coordinate")

	// ErrMemoryLimitExceeded is returned when a private copy of the points
	// would exceed the configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrClosed is returned by operations on a closed Tree.
	ErrClosed = errors.New("tree closed")
)

// ErrDimensionMismatch indicates a point or query of the wrong dimensionality.
// Index is the position of the offending point or batch query, or -1 for a
// single query.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch at %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates points without coordinates.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// InvariantError is returned by Verify when the tree structure is broken.
// It always indicates a defect in tree construction.
type InvariantError struct {
	// Leaf is the offending leaf, or -1 for tree-wide violations.
	Leaf int
	// Point is the offending point index, or -1.
	Point  int
	Reason string
	cause  error
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.cause.Error()
}

func (e *InvariantError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, partition.ErrEmptyPointSet) {
		return fmt.Errorf("%w: %w", ErrEmptyPointSet, err)
	}
	if errors.Is(err, partition.ErrNonFinite) {
		return fmt.Errorf("%w: %w", ErrNonFinite, err)
	}
	if errors.Is(err, partition.ErrZeroDimension) {
		return &ErrInvalidDimension{Dimension: 0, cause: err}
	}

	var de *partition.DimensionError
	if errors.As(err, &de) {
		return &ErrDimensionMismatch{Index: de.Index, Expected: de.Expected, Actual: de.Actual, cause: err}
	}
	var ie *partition.InvariantError
	if errors.As(err, &ie) {
		return &InvariantError{Leaf: ie.Leaf, Point: ie.Point, Reason: ie.Reason, cause: err}
	}

	return err
}
