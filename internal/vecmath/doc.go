// Package vecmath provides the vector kernels used by the partition tree.
//
// Kernels are pure Go. Runtime CPU feature detection (golang.org/x/sys/cpu)
// selects between a straight loop and a 4-way unrolled loop whose independent
// accumulators map well onto wide FMA pipelines. Set SCHTREE_KERNEL=generic to
// force the straight loop.
//
// # Operations
//
//   - Dot, SquaredL2, Euclidean
//   - Norm, ScaleInPlace, NormalizeInPlace
//
// All functions assume len(a) == len(b); callers validate dimensions.
package vecmath
