//go:build amd64 && !purego

package avx

import (
	"unsafe"

	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

// CopyBlocks copies src into dst with 256-bit VMOVNTPS non-temporal stores.
// Lengths must match and be a multiple of registry.GroupBytes, and dst must
// start on a 64-byte boundary. Panics otherwise.
func CopyBlocks(dst, src []byte) {
	if len(dst) != len(src) {
		panic("kernel: slice length mismatch")
	}
	if len(dst)%registry.GroupBytes != 0 {
		panic("kernel: length is not a multiple of the group size")
	}
	if len(dst) == 0 {
		return
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(dst)))%registry.GroupBytes != 0 {
		panic("kernel: destination is not 64-byte aligned")
	}
	copyStreamAVX(dst, src)
}

// Assembly function declarations (implemented in copy_amd64.s)

//go:noescape
func copyStreamAVX(dst, src []byte)
