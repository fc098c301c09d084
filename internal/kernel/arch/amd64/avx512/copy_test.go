//go:build amd64 && !purego

package avx512

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/cwbudde/algo-membw/internal/cpu"
)

// aligned returns an n-byte slice whose first byte sits on a 64-byte boundary.
func aligned(n int) []byte {
	raw := make([]byte, n+64)
	off := int((64 - uintptr(unsafe.Pointer(&raw[0]))%64) % 64)
	return raw[off : off+n]
}

func TestCopyBlocks(t *testing.T) {
	if !cpu.DetectFeatures().HasAVX512 {
		t.Skip("avx512 not supported on this CPU")
	}

	for _, n := range []int{64, 128, 192, 64 * 1024} {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i*13 + 1)
		}
		dst := aligned(n)

		CopyBlocks(dst, src)

		if !bytes.Equal(dst, src) {
			t.Fatalf("n=%d: dst differs from src", n)
		}
	}
}

func TestCopyBlocksEmpty(t *testing.T) {
	CopyBlocks(nil, nil)
}

func TestCopyBlocksMisaligned(t *testing.T) {
	dst := aligned(192)[1:129]
	src := make([]byte, 128)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for misaligned destination")
		}
	}()
	CopyBlocks(dst, src)
}
