//go:build amd64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// x/sys/cpu checks XCR0, so AVX and AVX-512F are only reported when the OS
// saves the wider registers across context switches.
func detectFeaturesImpl() Features {
	return Features{
		HasSSE2:      cpu.X86.HasSSE2,
		HasAVX:       cpu.X86.HasAVX,
		HasAVX512:    cpu.X86.HasAVX512F,
		Architecture: runtime.GOARCH,
	}
}
