package generic

import (
	"bytes"
	"testing"
)

func TestCopyBlocks(t *testing.T) {
	for _, n := range []int{0, 64, 128, 4096} {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i * 7)
		}
		dst := make([]byte, n)

		CopyBlocks(dst, src)

		if !bytes.Equal(dst, src) {
			t.Fatalf("n=%d: dst differs from src", n)
		}
	}
}

func TestCopyBlocksPanics(t *testing.T) {
	tests := []struct {
		name     string
		dst, src []byte
	}{
		{"length mismatch", make([]byte, 64), make([]byte, 128)},
		{"partial group", make([]byte, 96), make([]byte, 96)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			CopyBlocks(tt.dst, tt.src)
		})
	}
}
