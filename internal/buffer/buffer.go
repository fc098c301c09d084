package buffer

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/cwbudde/algo-membw/internal/host"
	"github.com/cwbudde/algo-membw/internal/kernel"
)

// Alignment is the byte alignment of the first element of every array.
const Alignment = 64

var (
	// ErrAllocation is returned when the arrays cannot be allocated.
	ErrAllocation = errors.New("buffer: allocation failed")

	// ErrHugeUnsupported is returned when huge pages cannot back a mapping.
	ErrHugeUnsupported = errors.New("buffer: huge pages not available")
)

// Pool selects where array memory comes from.
type Pool int

const (
	// PoolHeap allocates from the Go heap with manual alignment.
	PoolHeap Pool = iota

	// PoolMapped allocates an anonymous private mapping.
	PoolMapped

	// PoolHuge allocates an anonymous mapping advised for huge pages,
	// the high-bandwidth pool of this benchmark.
	PoolHuge
)

// String returns the pool name used on the command line.
func (p Pool) String() string {
	switch p {
	case PoolHeap:
		return "heap"
	case PoolMapped:
		return "mmap"
	case PoolHuge:
		return "huge"
	default:
		return "unknown"
	}
}

// ParsePool converts a command line name into a Pool.
func ParsePool(name string) (Pool, error) {
	switch strings.ToLower(name) {
	case "heap", "":
		return PoolHeap, nil
	case "mmap", "mapped":
		return PoolMapped, nil
	case "huge", "hugepage", "hbw":
		return PoolHuge, nil
	default:
		return PoolHeap, fmt.Errorf("buffer: unknown pool %q", name)
	}
}

// region is one raw allocation.
type region struct {
	raw   []byte
	unmap func() error
}

// Set holds the source (A), destination (B) and third (C) arrays.
type Set[T kernel.Element] struct {
	A, B, C []T

	pool     Pool
	fallback error
	regions  [3]region
}

// Options configures Allocate.
type Options struct {
	Length int  // elements per array, padding included
	Pool   Pool // requested pool

	// SkipMemoryCheck disables the available-memory precheck.
	SkipMemoryCheck bool
}

// Allocate returns three arrays of opts.Length elements each.
//
// Before touching memory it compares the total against the host's available
// memory and fails with ErrAllocation if it does not fit.
func Allocate[T kernel.Element](opts Options) (*Set[T], error) {
	if opts.Length < 1 {
		return nil, fmt.Errorf("%w: length %d", ErrAllocation, opts.Length)
	}

	var zero T
	size := opts.Length * int(unsafe.Sizeof(zero))
	if size/int(unsafe.Sizeof(zero)) != opts.Length {
		return nil, fmt.Errorf("%w: %d elements overflow", ErrAllocation, opts.Length)
	}

	if !opts.SkipMemoryCheck {
		need := 3 * uint64(size)
		if avail, err := host.AvailableMemory(); err == nil && avail > 0 && need > avail {
			return nil, fmt.Errorf("%w: need %d bytes, %d available", ErrAllocation, need, avail)
		}
	}

	s := &Set[T]{pool: opts.Pool}
	for i := range s.regions {
		r, pool, fallback, err := allocRegion(size, s.pool)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if fallback != nil {
			s.fallback = fallback
			// All three arrays share one pool: move the ones already
			// mapped onto the heap as well.
			for j := range i {
				if s.regions[j].unmap != nil {
					_ = s.regions[j].unmap()
				}
				s.regions[j] = allocHeap(size)
			}
		}
		s.pool = pool
		s.regions[i] = r
	}

	s.A = view[T](s.regions[0].raw, opts.Length)
	s.B = view[T](s.regions[1].raw, opts.Length)
	s.C = view[T](s.regions[2].raw, opts.Length)

	return s, nil
}

// Pool returns the pool that actually backs the arrays.
func (s *Set[T]) Pool() Pool { return s.pool }

// Fallback returns why the requested pool was replaced, or nil.
func (s *Set[T]) Fallback() error { return s.fallback }

// Len returns the element count of each array.
func (s *Set[T]) Len() int { return len(s.A) }

// Close releases mapped memory. Heap memory is left to the garbage collector.
// The arrays must not be used afterwards.
func (s *Set[T]) Close() error {
	var errs []error
	for i := range s.regions {
		if s.regions[i].unmap != nil {
			errs = append(errs, s.regions[i].unmap())
		}
		s.regions[i] = region{}
	}
	s.A, s.B, s.C = nil, nil, nil
	return errors.Join(errs...)
}

// allocRegion returns the region, the pool that backs it, and the reason a
// huge page request was served from the heap.
func allocRegion(size int, pool Pool) (r region, got Pool, fallback, err error) {
	switch pool {
	case PoolMapped:
		r, err = allocMapped(size)
		return r, PoolMapped, nil, err
	case PoolHuge:
		if r, fallback = allocMapped(size); fallback != nil {
			return allocHeap(size), PoolHeap, fallback, nil
		}
		if fallback = advise(r.raw); fallback != nil {
			_ = r.unmap()
			return allocHeap(size), PoolHeap, fallback, nil
		}
		return r, PoolHuge, nil, nil
	default:
		return allocHeap(size), PoolHeap, nil, nil
	}
}

// advise requests huge pages for a mapping.
var advise = adviseHuge

func allocHeap(size int) region {
	raw := make([]byte, size+Alignment)
	off := int((Alignment - uintptr(unsafe.Pointer(unsafe.SliceData(raw)))%Alignment) % Alignment)
	return region{raw: raw[off : off+size : off+size]}
}

func allocMapped(size int) (region, error) {
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return region{}, fmt.Errorf("%w: mmap %d bytes: %w", ErrAllocation, size, err)
	}
	return region{raw: m, unmap: m.Unmap}, nil
}

func view[T kernel.Element](raw []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n)
}

// Fill sets every element of x to v.
func Fill[T kernel.Element](x []T, v T) {
	for i := range x {
		x[i] = v
	}
}
