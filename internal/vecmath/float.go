package vecmath

import "math"

// Float is the set of scalar types a point coordinate may use.
type Float interface {
	~float32 | ~float64
}

// Dot calculates the dot product of two vectors.
//
// SAFETY: assumes len(a) == len(b).
func Dot[T Float](a, b []T) T {
	switch x := any(a).(type) {
	case []float32:
		return T(dot32Impl(x, any(b).([]float32)))
	case []float64:
		return T(dot64Impl(x, any(b).([]float64)))
	}
	return dotGeneric(a, b)
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
//
// SAFETY: assumes len(a) == len(b).
func SquaredL2[T Float](a, b []T) T {
	switch x := any(a).(type) {
	case []float32:
		return T(squaredL2_32Impl(x, any(b).([]float32)))
	case []float64:
		return T(squaredL2_64Impl(x, any(b).([]float64)))
	}
	return squaredL2Generic(a, b)
}

// Euclidean calculates the Euclidean (L2) distance between two vectors.
func Euclidean[T Float](a, b []T) T {
	return T(math.Sqrt(float64(SquaredL2(a, b))))
}

// Norm returns the L2 norm of v.
func Norm[T Float](v []T) T {
	return T(math.Sqrt(float64(Dot(v, v))))
}

// ScaleInPlace multiplies all elements of v by s.
func ScaleInPlace[T Float](v []T, s T) {
	for i := range v {
		v[i] *= s
	}
}

// NormalizeInPlace L2-normalizes v in place.
// Returns false, leaving v untouched, if v has zero (or non-finite) norm.
func NormalizeInPlace[T Float](v []T) bool {
	if len(v) == 0 {
		return false
	}
	n := math.Sqrt(float64(Dot(v, v)))
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return false
	}
	ScaleInPlace(v, T(1/n))
	return true
}

// Inf returns positive infinity in T.
func Inf[T Float]() T {
	return T(math.Inf(1))
}

// Epsilon returns the unit roundoff of T (half the gap between 1 and the
// next representable value).
func Epsilon[T Float]() T {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return T(0x1p-24)
	}
	return T(0x1p-53)
}
