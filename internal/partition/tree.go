// Package partition implements the semi-convex-hull partition tree.
//
// Build splits the point indices recursively by the bisector of two far
// apart points, then tightens every leaf's inherited half-spaces until each
// touches the leaf's points. Search visits leaves in ascending order of their
// lower-bound distance to the query and stops as soon as no unvisited leaf can
// hold a point closer than the current k-th neighbor.
package partition

import (
	"math"

	"github.com/hupe1980/schtree/internal/geometry"
	"github.com/hupe1980/schtree/internal/pool"
	"github.com/hupe1980/schtree/internal/vecmath"
)

// MinLeafSize is the smallest leaf size threshold DefaultLeafSize returns.
const MinLeafSize = 10

// DefaultLeafSize returns max(round(0.01·n), MinLeafSize).
func DefaultLeafSize(n int) int {
	return max(int(math.Round(0.01*float64(n))), MinLeafSize)
}

// Config controls tree construction.
type Config struct {
	// LeafSize is the largest population a node may have without being split.
	// If 0, DefaultLeafSize(n) is used.
	LeafSize int

	// Copy makes the tree keep a private contiguous copy of the points.
	// Without it the tree references the caller's slices, which must stay
	// alive and unmodified for the tree's lifetime.
	Copy bool
}

// node is either a *leafNode or an *internalNode.
type node interface {
	isNode()
}

type internalNode struct {
	left, right node
}

func (*internalNode) isNode() {}

type leafNode[T vecmath.Float] struct {
	indices     []int
	constraints []geometry.Constraint[T]
	depth       int
	// forced is set when the leaf exceeds the size threshold because its
	// points could not be separated.
	forced bool
}

func (*leafNode[T]) isNode() {}

// Tree is an immutable partition tree. It is safe for concurrent searches.
type Tree[T vecmath.Float] struct {
	points   [][]T
	dim      int
	leafSize int
	owned    bool
	radius   T

	root   node
	leaves []*leafNode[T]

	contexts *pool.Pool[T]
}

// Len returns the number of indexed points.
func (t *Tree[T]) Len() int { return len(t.points) }

// Dimension returns the dimensionality of the points.
func (t *Tree[T]) Dimension() int { return t.dim }

// LeafSize returns the split threshold the tree was built with.
func (t *Tree[T]) LeafSize() int { return t.leafSize }

// Owned reports whether the tree holds a private copy of the points.
func (t *Tree[T]) Owned() bool { return t.owned }

// Point returns the i-th point. The slice must not be modified.
func (t *Tree[T]) Point(i int) []T { return t.points[i] }

// NumLeaves returns the number of leaves.
func (t *Tree[T]) NumLeaves() int { return len(t.leaves) }

// collectLeaves lists the leaves left to right.
func collectLeaves[T vecmath.Float](root node) []*leafNode[T] {
	var leaves []*leafNode[T]
	stack := []node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n := n.(type) {
		case *leafNode[T]:
			leaves = append(leaves, n)
		case *internalNode:
			stack = append(stack, n.right, n.left)
		}
	}
	return leaves
}
