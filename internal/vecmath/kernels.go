package vecmath

var (
	dot32Impl        = dotGeneric[float32]
	dot64Impl        = dotGeneric[float64]
	squaredL2_32Impl = squaredL2Generic[float32]
	squaredL2_64Impl = squaredL2Generic[float64]
)

// selectKernels wires the kernel variables for the active ISA. Keep in sync
// with kernelName.
func selectKernels(isa ISA) {
	if isa == Generic {
		dot32Impl = dotGeneric[float32]
		dot64Impl = dotGeneric[float64]
		squaredL2_32Impl = squaredL2Generic[float32]
		squaredL2_64Impl = squaredL2Generic[float64]
		return
	}
	dot32Impl = dotUnrolled[float32]
	dot64Impl = dotUnrolled[float64]
	squaredL2_32Impl = squaredL2Unrolled[float32]
	squaredL2_64Impl = squaredL2Unrolled[float64]
}

func dotGeneric[T Float](a, b []T) T {
	var ret T
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

func squaredL2Generic[T Float](a, b []T) T {
	var ret T
	for i := range a {
		d := a[i] - b[i]
		ret += d * d
	}
	return ret
}

func dotUnrolled[T Float](a, b []T) T {
	n := len(a)
	b = b[:n]
	var s0, s1, s2, s3 T
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return (s0 + s1) + (s2 + s3)
}

func squaredL2Unrolled[T Float](a, b []T) T {
	n := len(a)
	b = b[:n]
	var s0, s1, s2, s3 T
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}
