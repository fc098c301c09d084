// Package partition divides the benchmark arrays into per-worker ranges.
//
// Every worker receives the same chunk size S = floor(total/workers) rounded
// down to a multiple of the kernel vector width. Worker i owns the half-open
// range [i*S, (i+1)*S). Elements past workers*S are never touched by any
// worker; the plan records how many were dropped.
package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWorkers is returned when fewer than one worker is requested.
	ErrNoWorkers = errors.New("partition: worker count must be at least 1")

	// ErrTooManyWorkers is returned when the worker count exceeds the configured maximum.
	ErrTooManyWorkers = errors.New("partition: worker count exceeds maximum")

	// ErrChunkTooSmall is returned when the per-worker chunk rounds down to zero elements.
	ErrChunkTooSmall = errors.New("partition: array too small for worker count")

	// ErrInvalidWidth is returned for a vector width below one.
	ErrInvalidWidth = errors.New("partition: vector width must be at least 1")
)

// Range is a half-open element range [Start, Start+Len).
type Range struct {
	Start int
	Len   int
}

// End returns the exclusive end index.
func (r Range) End() int { return r.Start + r.Len }

// Plan is the assignment of element ranges to workers for one trial.
type Plan struct {
	Total   int     // total element count
	Width   int     // vector width the chunk is aligned to
	Chunk   int     // elements per worker
	Ranges  []Range // one per worker, in worker order
	Dropped int     // elements beyond the last range
}

// Workers returns the number of ranges.
func (p Plan) Workers() int { return len(p.Ranges) }

// Covered returns the number of elements assigned to some worker.
func (p Plan) Covered() int { return p.Chunk * len(p.Ranges) }

// ChunkSize returns floor(total/workers) rounded down to a multiple of width.
func ChunkSize(total, workers, width int) int {
	if workers < 1 || width < 1 || total < 0 {
		return 0
	}
	s := total / workers
	return s - s%width
}

// New computes the plan for total elements over workers, aligned to width.
// maxWorkers <= 0 means no upper bound.
func New(total, workers, width, maxWorkers int) (Plan, error) {
	if width < 1 {
		return Plan{}, fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	if workers < 1 {
		return Plan{}, fmt.Errorf("%w: got %d", ErrNoWorkers, workers)
	}
	if maxWorkers > 0 && workers > maxWorkers {
		return Plan{}, fmt.Errorf("%w: %d > %d", ErrTooManyWorkers, workers, maxWorkers)
	}

	chunk := ChunkSize(total, workers, width)
	if chunk == 0 {
		return Plan{}, fmt.Errorf("%w: %d elements, %d workers, width %d", ErrChunkTooSmall, total, workers, width)
	}

	ranges := make([]Range, workers)
	for i := range ranges {
		ranges[i] = Range{Start: i * chunk, Len: chunk}
	}

	return Plan{
		Total:   total,
		Width:   width,
		Chunk:   chunk,
		Ranges:  ranges,
		Dropped: total - chunk*workers,
	}, nil
}
