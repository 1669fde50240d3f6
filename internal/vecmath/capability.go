package vecmath

import (
	"os"
	"runtime"
	"strings"
)

// ISA identifies the CPU feature level detected at startup, or forced with
// SCHTREE_KERNEL. It names the hardware, not the kernel code: every level
// other than Generic runs the 4-way unrolled Go kernels, which the compiler
// schedules better on wide cores. See KernelName.
type ISA uint8

const (
	// Generic selects the straight-loop kernels.
	Generic ISA = iota
	// NEON is ARM64 Advanced SIMD.
	NEON
	// SVE2 is ARM64 scalable vectors.
	SVE2
	// AVX2 is x86-64 AVX2 with FMA.
	AVX2
	// AVX512 is x86-64 AVX-512 (F+BW).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// Set once from the platform init.
var (
	activeISA ISA

	hasASIMD    bool
	hasSVE2     bool
	hasAVX2     bool
	hasAVX512F  bool
	hasAVX512BW bool
)

// initCapabilities is called from the platform-specific init functions after
// CPU features are detected.
func initCapabilities() {
	activeISA = selectBestISA()
	if override := os.Getenv("SCHTREE_KERNEL"); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			activeISA = isa
		}
	}
	selectKernels(activeISA)
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case SVE2:
		return hasSVE2
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F && hasAVX512BW
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		if hasSVE2 && runtime.GOOS != "darwin" {
			return SVE2
		}
		if hasASIMD {
			return NEON
		}
	case "amd64":
		if hasAVX512F && hasAVX512BW {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the CPU feature level the kernels were selected for.
func ActiveISA() ISA {
	return activeISA
}

// KernelName returns the kernel code that runs for the active ISA:
// "generic" or "unrolled".
func KernelName() string {
	return kernelName(activeISA)
}

func kernelName(isa ISA) string {
	if isa == Generic {
		return "generic"
	}
	return "unrolled"
}

// UseISA switches kernels at runtime. It is not safe to call concurrently
// with kernel use and exists for tests and benchmarks.
func UseISA(isa ISA) bool {
	if !isISAAvailable(isa) {
		return false
	}
	activeISA = isa
	selectKernels(isa)
	return true
}
