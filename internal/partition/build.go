package partition

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/hupe1980/schtree/internal/geometry"
	"github.com/hupe1980/schtree/internal/pool"
	"github.com/hupe1980/schtree/internal/vecmath"
)

// Build constructs a tree over points.
func Build[T vecmath.Float](points [][]T, cfg Config) (*Tree[T], error) {
	dim, err := Validate(points)
	if err != nil {
		return nil, err
	}

	n := len(points)
	leafSize := cfg.LeafSize
	if leafSize <= 0 {
		leafSize = DefaultLeafSize(n)
	}

	t := &Tree[T]{
		points:   points,
		dim:      dim,
		leafSize: leafSize,
	}
	if cfg.Copy {
		t.points = copyPoints(points, dim)
		t.owned = true
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	b := &builder[T]{
		points:   t.points,
		leafSize: leafSize,
		scratch:  make([]int, n),
	}
	t.root = b.build(indices)
	t.radius = radius(t.points)
	t.leaves = collectLeaves[T](t.root)
	t.contexts = pool.New[T](len(t.leaves))

	return t, nil
}

// radius returns the largest norm of any point. It scales the rounding
// slack applied when pruning leaves.
func radius[T vecmath.Float](points [][]T) T {
	var r T
	for _, p := range points {
		r = max(r, vecmath.Norm(p))
	}
	return r
}

// Validate checks that points is a non-empty rectangular set of finite
// vectors and returns its dimension.
func Validate[T vecmath.Float](points [][]T) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptyPointSet
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, ErrZeroDimension
	}
	for i, p := range points {
		if len(p) != dim {
			return 0, &DimensionError{Index: i, Expected: dim, Actual: len(p)}
		}
		if !finite(p) {
			return 0, fmt.Errorf("%w: point %d", ErrNonFinite, i)
		}
	}
	return dim, nil
}

// CopySize returns the bytes a private copy of n points of dimension dim occupies.
func CopySize[T vecmath.Float](n, dim int) int64 {
	var zero T
	var header []T
	return int64(n)*int64(dim)*int64(unsafe.Sizeof(zero)) + int64(n)*int64(unsafe.Sizeof(header))
}

func finite[T vecmath.Float](p []T) bool {
	for _, v := range p {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// copyPoints copies points into one contiguous backing array.
func copyPoints[T vecmath.Float](points [][]T, dim int) [][]T {
	backing := make([]T, len(points)*dim)
	out := make([][]T, len(points))
	for i, p := range points {
		row := backing[i*dim : (i+1)*dim : (i+1)*dim]
		copy(row, p)
		out[i] = row
	}
	return out
}

type builder[T vecmath.Float] struct {
	points   [][]T
	leafSize int
	scratch  []int
}

// task is a node still to be built. The result is stored in *slot.
type task[T vecmath.Float] struct {
	indices     []int
	constraints []geometry.Constraint[T]
	depth       int
	slot        *node
}

// build splits nodes depth-first, left before right, using an explicit
// stack so degenerate inputs cannot exhaust the goroutine stack.
func (b *builder[T]) build(indices []int) node {
	var root node
	stack := []task[T]{{indices: indices, slot: &root}}

	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(tk.indices) <= b.leafSize {
			*tk.slot = b.leaf(tk, false)
			continue
		}

		plane, left, right, ok := b.split(tk.indices)
		if !ok {
			*tk.slot = b.leaf(tk, true)
			continue
		}

		in := &internalNode{}
		*tk.slot = in
		stack = append(stack,
			task[T]{
				indices:     right,
				constraints: extend(tk.constraints, plane, geometry.GreaterEqual),
				depth:       tk.depth + 1,
				slot:        &in.right,
			},
			task[T]{
				indices:     left,
				constraints: extend(tk.constraints, plane, geometry.LessEqual),
				depth:       tk.depth + 1,
				slot:        &in.left,
			},
		)
	}

	return root
}

// extend returns a new constraint list; the parent's backing array is never shared.
func extend[T vecmath.Float](parent []geometry.Constraint[T], plane geometry.Hyperplane[T], side geometry.Side) []geometry.Constraint[T] {
	out := make([]geometry.Constraint[T], len(parent), len(parent)+1)
	copy(out, parent)
	return append(out, geometry.Constraint[T]{Plane: plane, Side: side})
}

// split picks the bisector of a far apart pair and partitions indices in
// place, stably, into the ≤ side followed by the > side. ok is false when
// the node cannot be separated.
func (b *builder[T]) split(indices []int) (plane geometry.Hyperplane[T], left, right []int, ok bool) {
	p := b.farthest(indices[0], indices)
	q := b.farthest(p, indices)

	plane, ok = geometry.Bisector(b.points[p], b.points[q])
	if !ok {
		return plane, nil, nil, false
	}

	nl, nr := 0, 0
	for _, i := range indices {
		if plane.Project(b.points[i]) <= plane.Offset {
			indices[nl] = i
			nl++
		} else {
			b.scratch[nr] = i
			nr++
		}
	}
	copy(indices[nl:], b.scratch[:nr])

	if nl == 0 || nr == 0 {
		return plane, nil, nil, false
	}
	return plane, indices[:nl:nl], indices[nl:], true
}

// farthest returns the index in indices farthest from point from, skipping
// from itself. The first of equally distant candidates wins.
func (b *builder[T]) farthest(from int, indices []int) int {
	origin := b.points[from]
	best := -1
	var bestDist T = -1
	for _, i := range indices {
		if i == from {
			continue
		}
		if d := vecmath.SquaredL2(origin, b.points[i]); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (b *builder[T]) leaf(tk task[T], forced bool) *leafNode[T] {
	l := &leafNode[T]{
		indices:     tk.indices,
		constraints: tk.constraints,
		depth:       tk.depth,
		forced:      forced,
	}
	b.refine(l)
	return l
}

// refine moves every inherited constraint onto the leaf's points. The first
// pass widens the offset until no point violates the constraint, the second
// sets it to the extreme projection on the kept side: the largest a·p for a
// ≤ constraint, the smallest for a ≥ one. Both passes compare projections
// directly, so every leaf point satisfies the refined constraint exactly as
// Contains evaluates it.
func (b *builder[T]) refine(l *leafNode[T]) {
	if len(l.indices) == 0 {
		return
	}
	for c := range l.constraints {
		ct := &l.constraints[c]

		for _, i := range l.indices {
			if !ct.Contains(b.points[i]) {
				ct.Plane.Offset = ct.Plane.Project(b.points[i])
			}
		}

		extreme := ct.Plane.Project(b.points[l.indices[0]])
		for _, i := range l.indices[1:] {
			proj := ct.Plane.Project(b.points[i])
			if (ct.Side == geometry.LessEqual && proj > extreme) ||
				(ct.Side == geometry.GreaterEqual && proj < extreme) {
				extreme = proj
			}
		}
		ct.Plane.Offset = extreme
	}
}
