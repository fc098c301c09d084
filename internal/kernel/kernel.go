// Package kernel exposes the typed STREAM kernels used by the benchmark
// workers. Copy runs on the registry-selected streaming store kernel; Scale,
// Add and Triad are plain loops with an algo-vecmath fast path for float64.
package kernel

import (
	"errors"
	"unsafe"

	vecmath "github.com/cwbudde/algo-vecmath"
	"golang.org/x/exp/constraints"

	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel/arch/generic"
	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

// GroupBytes is the number of bytes moved per vector group.
const GroupBytes = registry.GroupBytes

// ErrNoKernel is returned when no registered kernel matches the CPU.
var ErrNoKernel = errors.New("kernel: no copy kernel registered (missing generic fallback?)")

// Element is the numeric type of the benchmark arrays.
type Element interface {
	constraints.Float
}

// Width returns the vector width for T: the number of elements per group
// (16 for float32, 8 for float64).
func Width[T Element]() int {
	var zero T
	return GroupBytes / int(unsafe.Sizeof(zero))
}

// Kernel is a copy kernel bound to element type T.
type Kernel[T Element] struct {
	entry *registry.OpEntry
}

// Select returns the best kernel for features from registry.Global.
func Select[T Element](features cpu.Features) (Kernel[T], error) {
	entry := registry.Global.Lookup(features)
	if entry == nil {
		return Kernel[T]{}, ErrNoKernel
	}
	return Kernel[T]{entry: entry}, nil
}

// Name returns the selected implementation name, e.g. "avx512".
func (k Kernel[T]) Name() string { return k.entry.Name }

// Level returns the SIMD level of the selected implementation.
func (k Kernel[T]) Level() cpu.SIMDLevel { return k.entry.SIMDLevel }

// NonTemporal reports whether Copy bypasses the cache on aligned destinations.
func (k Kernel[T]) NonTemporal() bool { return k.entry.NonTemporal }

// Width returns the vector width in elements.
func (k Kernel[T]) Width() int { return Width[T]() }

// Copy performs dst[i] = src[i]. Lengths must match and be a multiple of
// Width. A destination that is not 64-byte aligned is copied through the
// cache by the generic kernel, since non-temporal stores require alignment.
func (k Kernel[T]) Copy(dst, src []T) {
	if len(dst) != len(src) {
		panic("kernel: slice length mismatch")
	}
	if len(dst) == 0 {
		return
	}
	d, s := asBytes(dst), asBytes(src)
	if k.entry.NonTemporal && !Aligned(dst) {
		generic.CopyBlocks(d, s)
		return
	}
	k.entry.CopyBlocks(d, s)
}

// Scale performs dst[i] = scalar * src[i].
func (k Kernel[T]) Scale(dst, src []T, scalar T) {
	if len(dst) != len(src) {
		panic("kernel: slice length mismatch")
	}
	if d, ok := any(dst).([]float64); ok {
		vecmath.ScaleBlock(d, any(src).([]float64), float64(scalar))
		return
	}
	for i := range dst {
		dst[i] = scalar * src[i]
	}
}

// Add performs dst[i] = a[i] + b[i].
func (k Kernel[T]) Add(dst, a, b []T) {
	if len(a) != len(b) || len(dst) != len(a) {
		panic("kernel: slice length mismatch")
	}
	if d, ok := any(dst).([]float64); ok {
		vecmath.AddBlock(d, any(a).([]float64), any(b).([]float64))
		return
	}
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Triad performs dst[i] = b[i] + scalar*c[i] in a single pass.
func (k Kernel[T]) Triad(dst, b, c []T, scalar T) {
	if len(b) != len(c) || len(dst) != len(b) {
		panic("kernel: slice length mismatch")
	}
	for i := range dst {
		dst[i] = b[i] + scalar*c[i]
	}
}

// Aligned reports whether the first element of x sits on a GroupBytes boundary.
func Aligned[T Element](x []T) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(x)))%GroupBytes == 0
}

func asBytes[T Element](x []T) []byte {
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(x))), len(x)*int(unsafe.Sizeof(zero)))
}
