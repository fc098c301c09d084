package bandwidth

import (
	"errors"
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-membw/internal/affinity"
	"github.com/cwbudde/algo-membw/internal/barrier"
	"github.com/cwbudde/algo-membw/internal/buffer"
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel"
	"github.com/cwbudde/algo-membw/internal/partition"
	"github.com/cwbudde/algo-membw/internal/timer"
)

// minTicks is the smallest trial duration, in clock ticks, that is
// considered accurate.
const minTicks = 20

// Benchmark owns the arrays and the selected kernel. It is not safe for
// concurrent use; Run spawns and joins its own workers.
type Benchmark[T kernel.Element] struct {
	cfg    Config
	phases []Phase
	kernel kernel.Kernel[T]
	binder affinity.Binder
	mapper affinity.Mapper
	set    *buffer.Set[T]
	best   cpu.SIMDLevel
	tick   time.Duration
	log    logrus.FieldLogger

	// setup holds warnings raised by New, attached to every Result.
	setup []Warning

	// last describes the most recent Run for Validate.
	lastPlan   partition.Plan
	lastTrials int
}

// assignment is one worker's share of a phase run.
type assignment struct {
	worker  int
	core    int
	rng     partition.Range
	barrier *barrier.Barrier
	elapsed time.Duration
	bindErr error
}

// New validates the configuration, selects the kernel, allocates and
// initialises the arrays. Partitioning problems are reported before any
// memory is allocated.
func New[T kernel.Element](opts ...Option) (*Benchmark[T], error) {
	cfg := ApplyOptions(opts...)

	phases, err := cfg.enabledPhases()
	if err != nil {
		return nil, err
	}
	if cfg.ArraySize < 1 {
		return nil, fmt.Errorf("%w: array size %d", ErrInvalidConfig, cfg.ArraySize)
	}
	if cfg.Offset < 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrInvalidConfig, cfg.Offset)
	}

	b := &Benchmark[T]{
		cfg:    cfg,
		phases: phases,
		binder: cfg.Binder,
		mapper: cfg.Mapper,
		log:    cfg.Logger,
	}
	if b.binder == nil {
		b.binder = affinity.Probe()
	}
	if b.mapper == nil {
		b.mapper = affinity.Identity()
	}

	if b.cfg.NTimes <= 1 {
		b.warn(Warning{
			Kind:    WarnNTimes,
			Message: fmt.Sprintf("ntimes %d raised to %d", b.cfg.NTimes, DefaultNTimes),
		})
		b.cfg.NTimes = DefaultNTimes
	}

	features := cpu.DetectFeatures()
	if cfg.Features != nil {
		features = *cfg.Features
	}
	b.best = features.Best()
	b.kernel, err = kernel.Select[T](features)
	if err != nil {
		return nil, err
	}

	if _, err := b.plan(cfg.Threads); err != nil {
		return nil, err
	}

	b.set, err = buffer.Allocate[T](buffer.Options{
		Length:          cfg.ArraySize + cfg.Offset,
		Pool:            cfg.Pool,
		SkipMemoryCheck: cfg.SkipMemoryCheck,
	})
	if err != nil {
		return nil, err
	}
	if fb := b.set.Fallback(); fb != nil {
		b.warn(Warning{
			Kind:    WarnPool,
			Message: fmt.Sprintf("%v pool unavailable, using %v: %v", cfg.Pool, b.set.Pool(), fb),
		})
	}

	b.tick = timer.CheckTick()

	b.log.WithFields(logrus.Fields{
		"kernel":   b.kernel.Name(),
		"simd":     b.kernel.Level(),
		"cpu_simd": b.best,
		"binder":   b.binder.Name(),
		"pool":     b.set.Pool(),
		"elem":     b.ElementSize(),
		"size":     cfg.ArraySize,
		"ntimes":   b.cfg.NTimes,
		"tick_us":  b.tick.Microseconds(),
	}).Debug("benchmark ready")

	return b, nil
}

// Kernel returns the name of the selected copy kernel.
func (b *Benchmark[T]) Kernel() string { return b.kernel.Name() }

// ElementSize returns sizeof(T) in bytes.
func (b *Benchmark[T]) ElementSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Config returns the effective configuration after coercion.
func (b *Benchmark[T]) Config() Config { return b.cfg }

// CPUSIMD returns the widest instruction set the probed CPU supports. It can
// be wider than the selected kernel's level when no kernel exists for it.
func (b *Benchmark[T]) CPUSIMD() cpu.SIMDLevel { return b.best }

// Tick returns the measured clock granularity.
func (b *Benchmark[T]) Tick() time.Duration { return b.tick }

// Arrays returns the A, B and C arrays, padding included. They are valid
// until Close.
func (b *Benchmark[T]) Arrays() ([]T, []T, []T) {
	if b.set == nil {
		return nil, nil, nil
	}
	return b.set.A, b.set.B, b.set.C
}

// Close releases the arrays.
func (b *Benchmark[T]) Close() error {
	if b.set == nil {
		return nil
	}
	err := b.set.Close()
	b.set = nil
	return err
}

// Run measures with the configured thread count.
func (b *Benchmark[T]) Run() (*Result, error) {
	return b.RunThreads(b.cfg.Threads)
}

// RunThreads measures with threads workers. The arrays are reinitialised
// first, so consecutive runs are independent.
func (b *Benchmark[T]) RunThreads(threads int) (*Result, error) {
	if b.set == nil {
		return nil, ErrClosed
	}

	plan, err := b.plan(threads)
	if err != nil {
		return nil, err
	}

	log := b.log.WithField("threads", threads)
	res := &Result{
		Threads:     threads,
		Kernel:      b.kernel.Name(),
		SIMD:        b.kernel.Level().String(),
		CPUSIMD:     b.best.String(),
		ElementSize: b.ElementSize(),
		ArraySize:   b.cfg.ArraySize,
		Offset:      b.cfg.Offset,
		NTimes:      b.cfg.NTimes,
		Chunk:       plan.Chunk,
		Dropped:     plan.Dropped,
		Pool:        b.set.Pool().String(),
		Binder:      b.binder.Name(),
		Tick:        b.tick,
		Warnings:    append([]Warning(nil), b.setup...),
	}
	if plan.Dropped > 0 && b.cfg.Tail == TailWarn {
		w := Warning{
			Kind:    WarnTail,
			Message: fmt.Sprintf("%d trailing elements not processed (chunk %d x %d workers)", plan.Dropped, plan.Chunk, threads),
		}
		log.Warn(w.Message)
		res.Warnings = append(res.Warnings, w)
	}

	b.populate(plan)

	bound := make(map[int]bool, threads)
	timings := NewTimings(b.phases, b.cfg.NTimes)
	for trial := range b.cfg.NTimes {
		for _, phase := range b.phases {
			// A fresh plan and barrier per phase run.
			plan, err := b.plan(threads)
			if err != nil {
				return nil, err
			}
			tasks := b.runPhase(phase, plan)

			times := make([]time.Duration, len(tasks))
			for i := range tasks {
				t := &tasks[i]
				times[i] = t.elapsed
				if t.bindErr != nil && !bound[t.worker] {
					bound[t.worker] = true
					w := Warning{Kind: WarnAffinity, Worker: t.worker, Core: t.core, Message: t.bindErr.Error()}
					log.WithFields(logrus.Fields{
						"worker": t.worker,
						"core":   t.core,
						"binder": b.binder.Name(),
					}).Warn(t.bindErr)
					res.Warnings = append(res.Warnings, w)
				}
			}
			timings[phase][trial] = mean(times)
			if trial == b.cfg.NTimes-1 {
				res.WorkerTimes[phase] = times
			}

			log.WithFields(logrus.Fields{
				"trial": trial,
				"phase": phase,
			}).Debugf("mean worker time %v", timings[phase][trial])
		}
	}

	res.Timings = timings
	res.Phases = Summarize(timings, int64(b.ElementSize())*int64(b.cfg.ArraySize))
	for _, st := range res.Phases {
		if ticks := timer.Ticks(st.Min, b.tick); ticks < minTicks {
			w := Warning{
				Kind:    WarnClock,
				Message: fmt.Sprintf("%v best time is %d clock ticks, below %d", st.Phase, ticks, minTicks),
			}
			log.Warn(w.Message)
			res.Warnings = append(res.Warnings, w)
		}
	}

	b.lastPlan = plan
	b.lastTrials = b.cfg.NTimes

	if b.cfg.Validate {
		res.Validation = b.Validate()
		if !res.Validation.Passed() {
			log.WithField("validation", res.Validation.Arrays).Error("validation failed")
		}
	}

	return res, nil
}

// Validate checks the arrays against the state the last Run should have left.
// It returns nil before the first Run.
func (b *Benchmark[T]) Validate() *Validation {
	if b.set == nil || b.lastTrials == 0 {
		return nil
	}
	arrays := [3][]T{b.set.A[:b.cfg.ArraySize], b.set.B[:b.cfg.ArraySize], b.set.C[:b.cfg.ArraySize]}
	return validate(arrays, b.lastPlan.Covered(), b.phases, b.lastTrials)
}

// plan partitions the arrays for threads workers and applies the tail policy.
func (b *Benchmark[T]) plan(threads int) (partition.Plan, error) {
	plan, err := partition.New(b.cfg.ArraySize, threads, b.kernel.Width(), b.cfg.MaxWorkers)
	if err != nil {
		return partition.Plan{}, err
	}
	if plan.Dropped > 0 && b.cfg.Tail == TailReject {
		return partition.Plan{}, fmt.Errorf("%w: %d elements with chunk %d", ErrTailDropped, plan.Dropped, plan.Chunk)
	}
	return plan, nil
}

// runPhase executes one phase on every range of plan and returns the joined
// assignments.
func (b *Benchmark[T]) runPhase(phase Phase, plan partition.Plan) []assignment {
	bar := barrier.New(plan.Workers())
	tasks := make([]assignment, plan.Workers())

	var g errgroup.Group
	for i := range tasks {
		task := &tasks[i]
		*task = assignment{
			worker:  i,
			core:    b.mapper.Core(i),
			rng:     plan.Ranges[i],
			barrier: bar,
		}
		g.Go(func() error {
			b.work(phase, task)
			return nil
		})
	}
	_ = g.Wait()

	return tasks
}

// work is the body of one worker. The goroutine never unlocks its OS thread,
// so the pinned thread exits with it instead of returning to the scheduler.
func (b *Benchmark[T]) work(phase Phase, a *assignment) {
	runtime.LockOSThread()
	a.bindErr = b.binder.Bind(a.core)

	body := b.body(phase, a.rng)

	a.barrier.Wait()
	start := timer.Now()
	body()
	a.barrier.Wait()
	a.elapsed = timer.Since(start)
}

// body returns the kernel call of phase over r.
func (b *Benchmark[T]) body(phase Phase, r partition.Range) func() {
	k := b.kernel
	lo, hi := r.Start, r.End()
	a, bb, c := b.set.A[lo:hi], b.set.B[lo:hi], b.set.C[lo:hi]
	s := T(Scalar)

	switch phase {
	case PhaseScale:
		return func() { k.Scale(c, bb, s) }
	case PhaseAdd:
		return func() { k.Add(bb, a, c) }
	case PhaseTriad:
		return func() { k.Triad(a, c, bb, s) }
	default:
		return func() { k.Copy(bb, a) }
	}
}

// populate writes the initial values. Worker ranges are filled by goroutines
// pinned like the timed workers, so pages are first touched near the cores
// that stream them; the rest is filled by the caller.
func (b *Benchmark[T]) populate(plan partition.Plan) {
	s := b.set

	var g errgroup.Group
	for i, r := range plan.Ranges {
		core := b.mapper.Core(i)
		g.Go(func() error {
			runtime.LockOSThread()
			// Bind failures are reported by the timed phases.
			_ = b.binder.Bind(core)
			fill(s, r.Start, r.End())
			return nil
		})
	}
	_ = g.Wait()

	fill(s, plan.Covered(), s.Len())
}

func fill[T kernel.Element](s *buffer.Set[T], lo, hi int) {
	buffer.Fill(s.A[lo:hi], InitA)
	buffer.Fill(s.B[lo:hi], InitB)
	buffer.Fill(s.C[lo:hi], InitC)
}

// warn records a setup warning and logs it.
func (b *Benchmark[T]) warn(w Warning) {
	b.setup = append(b.setup, w)
	b.log.Warn(w.Message)
}

// IsConfigError reports whether err rejects the configuration rather than
// reporting a runtime failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrNoWorkers) ||
		errors.Is(err, ErrTooManyWorkers) ||
		errors.Is(err, ErrChunkTooSmall) ||
		errors.Is(err, ErrTailDropped)
}
