package distance

import (
	"fmt"
	"slices"

	"github.com/hupe1980/schtree/internal/vecmath"
)

// Float is the set of scalar types points may use.
type Float = vecmath.Float

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot[T Float](a, b []T) T {
	return vecmath.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2[T Float](a, b []T) T {
	return vecmath.SquaredL2(a, b)
}

// Euclidean calculates the L2 distance between two vectors.
func Euclidean[T Float](a, b []T) T {
	return vecmath.Euclidean(a, b)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero or non-finite L2 norm; v is then unchanged.
func NormalizeL2InPlace[T Float](v []T) bool {
	if len(v) == 0 {
		return false
	}
	return vecmath.NormalizeInPlace(v)
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy[T Float](src []T) ([]T, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Kernel returns the name of the kernel code in use: "generic" or "unrolled".
func Kernel() string {
	return vecmath.KernelName()
}

// CPU returns the CPU feature level the kernels were selected for, such as
// "avx2" or "neon".
func CPU() string {
	return vecmath.ActiveISA().String()
}

// UseKernel selects kernels for the named CPU feature level (see CPU). It
// fails if the name is unknown or the CPU does not support it.
func UseKernel(name string) error {
	isa, ok := vecmath.ParseISA(name)
	if !ok {
		return fmt.Errorf("distance: unknown kernel %q", name)
	}
	if !vecmath.UseISA(isa) {
		return fmt.Errorf("distance: kernel %s not supported on this CPU", isa)
	}
	return nil
}
