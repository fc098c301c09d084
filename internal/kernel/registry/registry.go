// Package registry provides the implementation registry for copy kernels.
//
// Several streaming copy variants (generic, SSE2, AVX, AVX-512) coexist in the
// binary. Architecture-specific packages register themselves via init()
// functions, and the benchmark selects the best one for the detected CPU once
// at startup, so worker code never branches on the platform.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-membw/internal/cpu"
)

// GroupBytes is the number of bytes every copy kernel moves per loop
// iteration: one 64-byte cache line, i.e. one 512-bit vector, two 256-bit
// vectors or four 128-bit vectors.
const GroupBytes = 64

// CopyFn copies src into dst. Both slices have the same length, which is a
// positive multiple of GroupBytes. Non-temporal kernels additionally require
// dst to start on a GroupBytes boundary.
type CopyFn func(dst, src []byte)

// OpEntry is one registered copy kernel implementation.
type OpEntry struct {
	// Name is a human-readable identifier for this implementation (e.g., "avx512").
	Name string

	// SIMDLevel indicates the SIMD instruction set required for this implementation.
	SIMDLevel cpu.SIMDLevel

	// Priority determines selection order when multiple compatible implementations exist.
	// Higher priority implementations are preferred. Suggested priorities:
	//   - Generic (SIMDNone): 0
	//   - SSE2: 10
	//   - AVX: 20
	//   - AVX-512: 30
	Priority int

	// NonTemporal reports whether CopyBlocks stores bypass cache allocation.
	NonTemporal bool

	// CopyBlocks performs dst[i] = src[i] one group at a time.
	CopyBlocks CopyFn
}

// OpRegistry manages the registration and lookup of copy kernel variants.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool // true if entries are sorted by priority (descending)
}

// Global is the default registry instance.
var Global = &OpRegistry{}

// Register adds an implementation variant to the registry.
//
// It is safe to call concurrently, but all registrations should complete
// before the first call to Lookup().
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority entry compatible with features,
// or nil if none is (which only happens without a generic fallback).
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if entry.CopyBlocks == nil {
			continue
		}
		if cpu.Supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

// sortByPriority sorts entries by priority in descending order.
// Must be called with r.mu held (write lock).
func (r *OpRegistry) sortByPriority() {
	// Insertion sort, the registry holds a handful of entries.
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}

// ListEntries returns a copy of all registered entries.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Reset clears all registered entries.
func (r *OpRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.sorted = false
}
