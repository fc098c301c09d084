package bandwidth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-membw/internal/affinity"
	"github.com/cwbudde/algo-membw/internal/buffer"
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/partition"
)

const (
	// DefaultArraySize is the element count of each array.
	DefaultArraySize = 128_000_000

	// DefaultNTimes is the number of trials, including the discarded first one.
	DefaultNTimes = 10

	// Scalar is the constant s of the Scale and Triad phases.
	Scalar = 3.0
)

var (
	// ErrInvalidConfig is returned for a configuration New cannot run.
	ErrInvalidConfig = errors.New("bandwidth: invalid configuration")

	// ErrTailDropped is returned under TailReject when the array size does
	// not divide evenly into vector-aligned per-worker chunks.
	ErrTailDropped = errors.New("bandwidth: array tail would not be processed")

	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("bandwidth: benchmark closed")

	// Partitioning errors, detected before allocation.
	ErrNoWorkers      = partition.ErrNoWorkers
	ErrTooManyWorkers = partition.ErrTooManyWorkers
	ErrChunkTooSmall  = partition.ErrChunkTooSmall

	// ErrAllocation is returned when the arrays cannot be allocated.
	ErrAllocation = buffer.ErrAllocation
)

// Phase is one STREAM kernel.
type Phase int

const (
	PhaseCopy Phase = iota
	PhaseScale
	PhaseAdd
	PhaseTriad

	// NumPhases is the number of phases.
	NumPhases
)

var phaseNames = [NumPhases]string{"Copy", "Scale", "Add", "Triad"}

// String returns the STREAM label of p.
func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Words returns how many array elements p moves per index: two for Copy and
// Scale, three for Add and Triad.
func (p Phase) Words() int {
	switch p {
	case PhaseAdd, PhaseTriad:
		return 3
	default:
		return 2
	}
}

// MarshalText encodes p by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(p.String())), nil
}

// ParsePhases parses a comma separated list such as "copy,triad". The word
// "all" selects every phase.
func ParsePhases(list string) ([]Phase, error) {
	var phases []Phase
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		switch name {
		case "":
			continue
		case "all":
			return []Phase{PhaseCopy, PhaseScale, PhaseAdd, PhaseTriad}, nil
		}
		found := false
		for p, label := range phaseNames {
			if strings.ToLower(label) == name {
				phases = append(phases, Phase(p))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidConfig, name)
		}
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phases in %q", ErrInvalidConfig, list)
	}
	return phases, nil
}

// TailPolicy decides what happens to the elements past the last worker's
// range.
type TailPolicy int

const (
	// TailWarn leaves the tail unprocessed and records a warning.
	TailWarn TailPolicy = iota

	// TailDrop leaves the tail unprocessed silently.
	TailDrop

	// TailReject fails New with ErrTailDropped.
	TailReject
)

// String returns the command line name of t.
func (t TailPolicy) String() string {
	switch t {
	case TailWarn:
		return "warn"
	case TailDrop:
		return "drop"
	case TailReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseTailPolicy converts a command line name into a TailPolicy.
func ParseTailPolicy(name string) (TailPolicy, error) {
	switch strings.ToLower(name) {
	case "warn", "":
		return TailWarn, nil
	case "drop":
		return TailDrop, nil
	case "reject":
		return TailReject, nil
	default:
		return TailWarn, fmt.Errorf("%w: unknown tail policy %q", ErrInvalidConfig, name)
	}
}

// Config holds benchmark settings.
type Config struct {
	// Threads is the number of concurrent workers.
	Threads int

	// ArraySize is the element count processed per array.
	ArraySize int

	// NTimes is the trial count. Values <= 1 are raised to DefaultNTimes.
	NTimes int

	// Offset is the number of padding elements allocated past ArraySize.
	Offset int

	// Phases lists the enabled phases. They always run in STREAM order.
	Phases []Phase

	// Binder pins worker threads. Nil selects affinity.Probe().
	Binder affinity.Binder

	// Mapper assigns workers to cores. Nil selects affinity.Identity().
	Mapper affinity.Mapper

	Tail       TailPolicy
	Pool       buffer.Pool
	MaxWorkers int // 0 means unlimited

	// Features overrides CPU detection for kernel selection.
	Features *cpu.Features

	// Validate checks the arrays against the scalar recurrence after Run.
	Validate bool

	// SkipMemoryCheck disables the available-memory precheck.
	SkipMemoryCheck bool

	Logger logrus.FieldLogger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a single-threaded copy benchmark with the classic
// STREAM array size.
func DefaultConfig() Config {
	return Config{
		Threads:   1,
		ArraySize: DefaultArraySize,
		NTimes:    DefaultNTimes,
		Phases:    []Phase{PhaseCopy},
		Tail:      TailWarn,
		Pool:      buffer.PoolHeap,
		Logger:    logrus.StandardLogger(),
	}
}

// WithThreads sets the worker count. It is validated by New.
func WithThreads(n int) Option {
	return func(cfg *Config) { cfg.Threads = n }
}

// WithArraySize sets the processed element count per array.
func WithArraySize(n int) Option {
	return func(cfg *Config) { cfg.ArraySize = n }
}

// WithNTimes sets the trial count.
func WithNTimes(n int) Option {
	return func(cfg *Config) { cfg.NTimes = n }
}

// WithOffset sets the padding element count.
func WithOffset(n int) Option {
	return func(cfg *Config) { cfg.Offset = n }
}

// WithPhases enables the given phases. An empty list is ignored.
func WithPhases(phases ...Phase) Option {
	return func(cfg *Config) {
		if len(phases) > 0 {
			cfg.Phases = append([]Phase(nil), phases...)
		}
	}
}

// WithAffinity sets the thread binder.
func WithAffinity(b affinity.Binder) Option {
	return func(cfg *Config) {
		if b != nil {
			cfg.Binder = b
		}
	}
}

// WithMapper sets the worker to core mapping.
func WithMapper(m affinity.Mapper) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.Mapper = m
		}
	}
}

// WithTailPolicy sets the tail policy.
func WithTailPolicy(t TailPolicy) Option {
	return func(cfg *Config) { cfg.Tail = t }
}

// WithPool sets the memory pool.
func WithPool(p buffer.Pool) Option {
	return func(cfg *Config) { cfg.Pool = p }
}

// WithMaxWorkers bounds the worker count. Values < 1 remove the bound.
func WithMaxWorkers(n int) Option {
	return func(cfg *Config) {
		if n < 0 {
			n = 0
		}
		cfg.MaxWorkers = n
	}
}

// WithFeatures overrides CPU detection.
func WithFeatures(f cpu.Features) Option {
	return func(cfg *Config) { cfg.Features = &f }
}

// WithValidation enables result validation after each Run.
func WithValidation(enabled bool) Option {
	return func(cfg *Config) { cfg.Validate = enabled }
}

// WithoutMemoryCheck skips the available-memory precheck.
func WithoutMemoryCheck() Option {
	return func(cfg *Config) { cfg.SkipMemoryCheck = true }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// enabledPhases returns the configured phases deduplicated in STREAM order.
func (cfg Config) enabledPhases() ([]Phase, error) {
	var set [NumPhases]bool
	for _, p := range cfg.Phases {
		if p < 0 || p >= NumPhases {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, p)
		}
		set[p] = true
	}
	if len(cfg.Phases) == 0 {
		set[PhaseCopy] = true
	}
	phases := make([]Phase, 0, NumPhases)
	for p, on := range set {
		if on {
			phases = append(phases, Phase(p))
		}
	}
	return phases, nil
}
