// Package cpu reports which streaming store instruction sets the processor,
// and the operating system's register state support, make available to the
// copy kernels.
//
// The probe runs once and is cached. Tests and the -force-generic switch can
// replace the result with SetForcedFeatures.
package cpu

import "sync"

// SIMDLevel is the instruction set a copy kernel is written for.
type SIMDLevel int

const (
	// SIMDNone is the pure Go kernel.
	SIMDNone SIMDLevel = iota

	// SIMDSSE2 is 128-bit MOVNTPS, the amd64 baseline.
	SIMDSSE2

	// SIMDAVX is 256-bit VMOVNTPS.
	SIMDAVX

	// SIMDAVX512 is 512-bit VMOVNTPS (AVX-512F).
	SIMDAVX512
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX512:
		return "AVX-512"
	default:
		return "Unknown"
	}
}

// Features is the outcome of the probe.
type Features struct {
	HasSSE2   bool
	HasAVX    bool // including OS support for YMM state
	HasAVX512 bool // AVX-512F, including OS support for ZMM state

	// ForceGeneric restricts selection to SIMDNone.
	ForceGeneric bool

	Architecture string // runtime.GOARCH
}

// Best returns the widest level f supports.
func (f Features) Best() SIMDLevel {
	for _, level := range [...]SIMDLevel{SIMDAVX512, SIMDAVX, SIMDSSE2} {
		if Supports(f, level) {
			return level
		}
	}
	return SIMDNone
}

var (
	mu       sync.Mutex
	detected *Features
	forced   *Features
)

// DetectFeatures returns the forced features if set, otherwise the cached
// probe result. It is safe for concurrent use.
func DetectFeatures() Features {
	mu.Lock()
	defer mu.Unlock()

	if forced != nil {
		return *forced
	}
	if detected == nil {
		f := detectFeaturesImpl()
		detected = &f
	}
	return *detected
}

// SetForcedFeatures makes DetectFeatures return f until ResetDetection.
func SetForcedFeatures(f Features) {
	mu.Lock()
	defer mu.Unlock()
	forced = &f
}

// ResetDetection drops forced features and the cached probe.
func ResetDetection() {
	mu.Lock()
	defer mu.Unlock()
	forced = nil
	detected = nil
}

// Supports reports whether a kernel written for level can run with features.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX:
		return features.HasAVX
	case SIMDAVX512:
		return features.HasAVX512
	default:
		return false
	}
}
