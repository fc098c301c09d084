package kernel

import (
	"testing"
	"unsafe"

	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/testutil"
)

func alignedFloat32(n int) []float32 {
	raw := make([]float32, n+16)
	off := int((64 - uintptr(unsafe.Pointer(&raw[0]))%64) % 64 / 4)
	return raw[off : off+n]
}

func TestWidth(t *testing.T) {
	if got := Width[float32](); got != 16 {
		t.Fatalf("Width[float32]() = %d, want 16", got)
	}
	if got := Width[float64](); got != 8 {
		t.Fatalf("Width[float64]() = %d, want 8", got)
	}
}

func TestSelectForcedGeneric(t *testing.T) {
	k, err := Select[float32](cpu.Features{ForceGeneric: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if k.Name() != "generic" {
		t.Fatalf("expected generic, got %q", k.Name())
	}
	if k.NonTemporal() {
		t.Fatal("generic kernel must not claim non-temporal stores")
	}
}

func TestCopyAllKernels(t *testing.T) {
	modes := []struct {
		name     string
		features cpu.Features
	}{
		{"generic", cpu.Features{ForceGeneric: true}},
		{"detected", cpu.DetectFeatures()},
	}

	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			k, err := Select[float32](mode.features)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}

			const n = 16 * 100
			src := testutil.Ramp[float32](n, 0, 0.5)

			dst := alignedFloat32(n)
			k.Copy(dst, src)
			testutil.RequireSliceEqual(t, dst, src)

			// Unaligned destinations fall back to the cached path.
			skew := alignedFloat32(n + 1)[1:]
			k.Copy(skew, src)
			testutil.RequireSliceEqual(t, skew, src)
		})
	}
}

func TestCopyLengthMismatchPanics(t *testing.T) {
	k, err := Select[float64](cpu.Features{ForceGeneric: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	k.Copy(make([]float64, 8), make([]float64, 16))
}

func TestScaleAddTriad(t *testing.T) {
	k32, err := Select[float32](cpu.Features{ForceGeneric: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	k64, err := Select[float64](cpu.Features{ForceGeneric: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	a32 := []float32{1, 2, 3, 4}
	b32 := []float32{10, 20, 30, 40}
	dst32 := make([]float32, 4)

	k32.Scale(dst32, a32, 3)
	testutil.RequireSliceEqual(t, dst32, []float32{3, 6, 9, 12})

	k32.Add(dst32, a32, b32)
	testutil.RequireSliceEqual(t, dst32, []float32{11, 22, 33, 44})

	k32.Triad(dst32, a32, b32, 3)
	testutil.RequireSliceEqual(t, dst32, []float32{31, 62, 93, 124})

	a64 := []float64{1, 2, 3, 4}
	b64 := []float64{10, 20, 30, 40}
	dst64 := make([]float64, 4)

	k64.Scale(dst64, a64, 3)
	testutil.RequireSliceNearlyEqual(t, dst64, []float64{3, 6, 9, 12}, 1e-12)

	k64.Add(dst64, a64, b64)
	testutil.RequireSliceNearlyEqual(t, dst64, []float64{11, 22, 33, 44}, 1e-12)

	k64.Triad(dst64, a64, b64, 3)
	testutil.RequireSliceNearlyEqual(t, dst64, []float64{31, 62, 93, 124}, 1e-12)
}

func TestAligned(t *testing.T) {
	x := alignedFloat32(32)
	if !Aligned(x) {
		t.Fatal("expected aligned slice")
	}
	if Aligned(x[1:]) {
		t.Fatal("expected misaligned slice")
	}
}

func BenchmarkCopy(b *testing.B) {
	k, err := Select[float32](cpu.DetectFeatures())
	if err != nil {
		b.Fatalf("Select: %v", err)
	}

	const n = 1 << 20
	src := make([]float32, n)
	dst := alignedFloat32(n)

	b.SetBytes(int64(2 * 4 * n)) // one read and one write stream
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		k.Copy(dst, src)
	}
}
