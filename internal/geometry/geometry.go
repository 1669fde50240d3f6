// Package geometry provides the half-space primitives the partition tree is
// built from: hyperplanes with unit normals, one-sided constraints, and the
// point-to-region lower bound used for pruning.
package geometry

import (
	"fmt"
	"math"

	"github.com/hupe1980/schtree/internal/vecmath"
)

// Side selects which closed half-space of a hyperplane a Constraint keeps.
type Side uint8

const (
	// LessEqual keeps {x : a·x ≤ b}.
	LessEqual Side = iota
	// GreaterEqual keeps {x : a·x ≥ b}.
	GreaterEqual
)

func (s Side) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Side(%d)", s)
	}
}

// Opposite returns the complementary side.
func (s Side) Opposite() Side {
	if s == LessEqual {
		return GreaterEqual
	}
	return LessEqual
}

// Hyperplane is the set {x : Normal·x = Offset}.
// Normal has unit norm, so |Normal·x − Offset| is the Euclidean distance
// from x to the plane.
type Hyperplane[T vecmath.Float] struct {
	Normal []T
	Offset T
}

// Bisector returns the hyperplane halfway between p and q whose normal points
// from q towards p. It returns false if p and q coincide.
func Bisector[T vecmath.Float](p, q []T) (Hyperplane[T], bool) {
	normal := make([]T, len(p))
	mid := make([]T, len(p))
	for i := range p {
		normal[i] = p[i] - q[i]
		mid[i] = (p[i] + q[i]) / 2
	}
	if !vecmath.NormalizeInPlace(normal) {
		return Hyperplane[T]{}, false
	}
	return Hyperplane[T]{Normal: normal, Offset: vecmath.Dot(normal, mid)}, true
}

// Project returns Normal·p.
func (h Hyperplane[T]) Project(p []T) T {
	return vecmath.Dot(p, h.Normal)
}

// Distance returns the Euclidean distance from p to the hyperplane.
func (h Hyperplane[T]) Distance(p []T) T {
	return T(math.Abs(float64(h.Project(p) - h.Offset)))
}

// Constraint is a closed half-space: a hyperplane plus the side kept.
type Constraint[T vecmath.Float] struct {
	Plane Hyperplane[T]
	Side  Side
}

// Contains reports whether p lies inside the half-space (boundary included).
func (c Constraint[T]) Contains(p []T) bool {
	return containsProjection(c.Side, c.Plane.Project(p), c.Plane.Offset)
}

func (c Constraint[T]) String() string {
	return fmt.Sprintf("a·x %s %v", c.Side, c.Plane.Offset)
}

func containsProjection[T vecmath.Float](side Side, proj, offset T) bool {
	if side == LessEqual {
		return proj <= offset
	}
	return proj >= offset
}

// Distance returns the Euclidean distance between two points.
func Distance[T vecmath.Float](p, q []T) T {
	return vecmath.Euclidean(p, q)
}

// DistanceToHyperplane returns |p·a − b|.
func DistanceToHyperplane[T vecmath.Float](p []T, h Hyperplane[T]) T {
	return h.Distance(p)
}

// Inside reports whether p satisfies c.
func Inside[T vecmath.Float](p []T, c Constraint[T]) bool {
	return c.Contains(p)
}

// DistanceToRegion returns a lower bound on the distance from p to any point
// of the intersection of the given half-spaces: zero if p satisfies every
// constraint, otherwise the largest distance to the plane of a violated one.
func DistanceToRegion[T vecmath.Float](p []T, constraints []Constraint[T]) T {
	var dist T
	for i := range constraints {
		c := &constraints[i]
		proj := c.Plane.Project(p)
		if containsProjection(c.Side, proj, c.Plane.Offset) {
			continue
		}
		d := proj - c.Plane.Offset
		if d < 0 {
			d = -d
		}
		if d > dist {
			dist = d
		}
	}
	return dist
}
