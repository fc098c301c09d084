// Command membw measures sustained memory bandwidth with a parallel
// streaming copy.
//
// Usage:
//
//	membw [flags] THREADS
//
// THREADS workers are pinned to cores 0..THREADS-1 by default. Each run
// prints one line with the best observed Copy bandwidth.
//
// Examples:
//
//	membw 4
//	membw -size 400000000 -ntimes 20 16
//	membw -kernels all -verbose -validate 8
//	membw -affinity scatter -scatter-stride 4 -sweep 64
//	membw -type f64 -pool huge -json 32
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sugawarayuuta/sonnet"

	"github.com/cwbudde/algo-membw/bandwidth"
	"github.com/cwbudde/algo-membw/internal/affinity"
	"github.com/cwbudde/algo-membw/internal/buffer"
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/host"
)

type options struct {
	size          int
	ntimes        int
	offset        int
	elemType      string
	kernels       string
	affinityMode  string
	scatterStride int
	cores         string
	tail          string
	pool          string
	forceGeneric  bool
	validate      bool
	sweep         bool
	retries       int
	json          bool
	verbose       bool
	maxWorkers    int
	logLevel      string
}

// report is the -json document.
type report struct {
	Host    host.Info           `json:"host"`
	Results []*bandwidth.Result `json:"results"`
}

func main() {
	var o options
	flag.IntVar(&o.size, "size", bandwidth.DefaultArraySize, "elements per array")
	flag.IntVar(&o.ntimes, "ntimes", bandwidth.DefaultNTimes, "trials per run, the first is discarded (values <= 1 mean 10)")
	flag.IntVar(&o.offset, "offset", 0, "padding elements allocated past each array")
	flag.StringVar(&o.elemType, "type", "f32", "element type: f32 or f64")
	flag.StringVar(&o.kernels, "kernels", "copy", "phases to time: copy,scale,add,triad or all")
	flag.StringVar(&o.affinityMode, "affinity", "identity", "core mapping: identity, scatter, compact (allowed cores in order) or none")
	flag.IntVar(&o.scatterStride, "scatter-stride", 0, "core distance between neighbouring workers for -affinity scatter (0: hardware threads per core)")
	flag.StringVar(&o.cores, "cores", "", "explicit comma separated core list, overrides -affinity")
	flag.StringVar(&o.tail, "tail", "warn", "unprocessed array tail: warn, drop or reject")
	flag.StringVar(&o.pool, "pool", "heap", "array memory: heap, mmap or huge")
	flag.BoolVar(&o.forceGeneric, "force-generic", false, "disable SIMD copy kernels")
	flag.BoolVar(&o.validate, "validate", false, "check array contents after each run")
	flag.BoolVar(&o.sweep, "sweep", false, "run once for every thread count 1..THREADS")
	flag.IntVar(&o.retries, "retries", 1, "extra runs for a thread count whose trials are unsettled")
	flag.BoolVar(&o.json, "json", false, "print results as JSON")
	flag.BoolVar(&o.verbose, "verbose", false, "print the per-phase table and host details")
	flag.IntVar(&o.maxWorkers, "max-workers", 0, "reject thread counts above this (0: no limit)")
	flag.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: membw [flags] THREADS\n\n")
		fmt.Fprintf(os.Stderr, "Measures memory bandwidth with THREADS pinned streaming copy workers.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  membw 4\n")
		fmt.Fprintf(os.Stderr, "  membw -kernels all -verbose -validate 8\n")
		fmt.Fprintf(os.Stderr, "  membw -affinity scatter -scatter-stride 4 -sweep 64\n")
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid -log-level")
	}
	log.SetLevel(level)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	threads, err := parseThreads(flag.Arg(0))
	if err != nil {
		log.WithError(err).Fatal("invalid thread count")
	}

	switch o.elemType {
	case "f32", "float32", "float":
		err = run[float32](os.Stdout, o, threads, log)
	case "f64", "float64", "double":
		err = run[float64](os.Stdout, o, threads, log)
	default:
		err = fmt.Errorf("unknown -type %q", o.elemType)
	}
	if err != nil {
		log.WithError(err).Fatal("benchmark failed")
	}
}

func run[T float32 | float64](w io.Writer, o options, threads int, log *logrus.Logger) error {
	info := host.Probe()

	opts, err := buildOptions(o, threads, info)
	if err != nil {
		return err
	}
	opts = append(opts, bandwidth.WithLogger(log))

	if o.forceGeneric {
		cpu.SetForcedFeatures(cpu.Features{ForceGeneric: true})
	}

	b, err := bandwidth.New[T](opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	log.WithFields(logrus.Fields{
		"kernel": b.Kernel(),
		"cpu":    info.Model,
		"cores":  info.LogicalCores,
	}).Info("starting")

	counts := []int{threads}
	if o.sweep {
		counts = bandwidth.SweepCounts(threads)
	}
	results, err := bandwidth.Sweep(b, counts, bandwidth.SweepConfig{Retries: o.retries})
	if err != nil {
		return err
	}

	if o.json {
		data, err := sonnet.Marshal(report{Host: info, Results: results})
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	if o.verbose {
		if err := printHost(w, info, b); err != nil {
			return err
		}
	}
	for _, res := range results {
		if err := res.WriteLine(w); err != nil {
			return err
		}
		if o.verbose {
			if err := res.WriteTable(w); err != nil {
				return err
			}
		}
		if res.Validation != nil && !res.Validation.Passed() {
			return fmt.Errorf("validation failed at %d threads", res.Threads)
		}
	}
	return nil
}

// buildOptions maps command line values onto benchmark options.
func buildOptions(o options, threads int, info host.Info) ([]bandwidth.Option, error) {
	phases, err := bandwidth.ParsePhases(o.kernels)
	if err != nil {
		return nil, err
	}
	tail, err := bandwidth.ParseTailPolicy(o.tail)
	if err != nil {
		return nil, err
	}
	pool, err := buffer.ParsePool(o.pool)
	if err != nil {
		return nil, err
	}

	opts := []bandwidth.Option{
		bandwidth.WithThreads(threads),
		bandwidth.WithArraySize(o.size),
		bandwidth.WithNTimes(o.ntimes),
		bandwidth.WithOffset(o.offset),
		bandwidth.WithPhases(phases...),
		bandwidth.WithTailPolicy(tail),
		bandwidth.WithPool(pool),
		bandwidth.WithMaxWorkers(o.maxWorkers),
		bandwidth.WithValidation(o.validate),
	}

	if o.cores != "" {
		cores, err := parseCores(o.cores)
		if err != nil {
			return nil, err
		}
		return append(opts, bandwidth.WithMapper(affinity.Explicit(cores))), nil
	}

	switch strings.ToLower(o.affinityMode) {
	case "identity", "":
		opts = append(opts, bandwidth.WithMapper(affinity.Identity()))
	case "compact":
		// Pack workers onto the cores this process may use, in order.
		if allowed := affinity.Allowed(); len(allowed) > 0 {
			opts = append(opts, bandwidth.WithMapper(affinity.Explicit(allowed)))
		} else {
			opts = append(opts, bandwidth.WithMapper(affinity.Compact(info.LogicalCores)))
		}
	case "scatter":
		stride := o.scatterStride
		if stride < 1 {
			stride = threadsPerCore(info)
		}
		opts = append(opts, bandwidth.WithMapper(affinity.Scatter(info.LogicalCores, stride)))
	case "none":
		opts = append(opts, bandwidth.WithAffinity(affinity.Disabled()))
	default:
		return nil, fmt.Errorf("unknown -affinity %q", o.affinityMode)
	}
	return opts, nil
}

func parseThreads(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: got %d", bandwidth.ErrNoWorkers, n)
	}
	return n, nil
}

func parseCores(list string) ([]int, error) {
	var cores []int
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(field, "-")
		first, err := strconv.Atoi(lo)
		if err != nil || first < 0 {
			return nil, fmt.Errorf("invalid core %q", field)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil || last < first {
				return nil, fmt.Errorf("invalid core range %q", field)
			}
		}
		for c := first; c <= last; c++ {
			cores = append(cores, c)
		}
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("empty core list %q", list)
	}
	return cores, nil
}

// threadsPerCore returns the hardware threads per physical core, at least 1.
func threadsPerCore(info host.Info) int {
	if info.PhysicalCores < 1 || info.LogicalCores <= info.PhysicalCores {
		return 1
	}
	return info.LogicalCores / info.PhysicalCores
}

func printHost[T float32 | float64](w io.Writer, info host.Info, b *bandwidth.Benchmark[T]) error {
	cfg := b.Config()
	_, err := fmt.Fprintf(w,
		"CPU: %s (%d logical, %d physical)\nKernel: %s, %d bytes per element\nArray size: %d (offset %d), %d trials\nClock granularity: %d us\n",
		info.Model, info.LogicalCores, info.PhysicalCores,
		b.Kernel(), b.ElementSize(),
		cfg.ArraySize, cfg.Offset, cfg.NTimes,
		b.Tick().Microseconds(),
	)
	return err
}
