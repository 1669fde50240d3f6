// Package distance provides the Euclidean vector kernels used by schtree.
//
// Kernels are selected once at startup from the CPU features reported by
// golang.org/x/sys/cpu and can be overridden with the SCHTREE_KERNEL
// environment variable (generic, neon, sve2, avx2, avx512).
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	d2 := distance.SquaredL2(a, b)
//	ok := distance.NormalizeL2InPlace(v)
//	fmt.Println(distance.Kernel())
package distance
