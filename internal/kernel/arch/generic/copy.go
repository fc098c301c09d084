package generic

import "github.com/cwbudde/algo-membw/internal/kernel/registry"

// CopyBlocks copies src into dst one 64-byte group at a time.
// Lengths must match and be a multiple of registry.GroupBytes. Panics otherwise.
// This is the pure Go fallback implementation; stores go through the cache.
func CopyBlocks(dst, src []byte) {
	if len(dst) != len(src) {
		panic("kernel: slice length mismatch")
	}
	if len(dst)%registry.GroupBytes != 0 {
		panic("kernel: length is not a multiple of the group size")
	}
	for i := 0; i < len(dst); i += registry.GroupBytes {
		*(*[registry.GroupBytes]byte)(dst[i:]) = *(*[registry.GroupBytes]byte)(src[i:])
	}
}
