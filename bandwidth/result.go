package bandwidth

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WarningKind classifies a degraded but completed measurement.
type WarningKind string

const (
	WarnAffinity WarningKind = "affinity"
	WarnTail     WarningKind = "tail"
	WarnNTimes   WarningKind = "ntimes"
	WarnClock    WarningKind = "clock"
	WarnPool     WarningKind = "pool"
)

// Warning is one non-fatal condition observed during setup or a run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Worker  int         `json:"worker"`
	Core    int         `json:"core"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Result is the outcome of one Run.
type Result struct {
	Threads     int           `json:"threads"`
	Kernel      string        `json:"kernel"`
	SIMD        string        `json:"simd"`
	CPUSIMD     string        `json:"cpu_simd"`
	ElementSize int           `json:"element_size"`
	ArraySize   int           `json:"array_size"`
	Offset      int           `json:"offset"`
	NTimes      int           `json:"ntimes"`
	Chunk       int           `json:"chunk"`
	Dropped     int           `json:"dropped"`
	Pool        string        `json:"pool"`
	Binder      string        `json:"binder"`
	Tick        time.Duration `json:"tick"`

	Phases  []PhaseStats `json:"phases"`
	Timings Timings      `json:"timings"`

	// WorkerTimes holds the per-worker elapsed times of the last trial.
	WorkerTimes [NumPhases][]time.Duration `json:"worker_times"`

	Warnings   []Warning   `json:"warnings,omitempty"`
	Validation *Validation `json:"validation,omitempty"`
}

// Stats returns the statistics of phase p.
func (r *Result) Stats(p Phase) (PhaseStats, bool) {
	for _, st := range r.Phases {
		if st.Phase == p {
			return st, true
		}
	}
	return PhaseStats{}, false
}

// Bandwidth returns the best Copy rate in MB/s, or the first enabled phase's
// rate when Copy did not run.
func (r *Result) Bandwidth() float64 {
	if st, ok := r.Stats(PhaseCopy); ok {
		return st.RateMBs
	}
	if len(r.Phases) > 0 {
		return r.Phases[0].RateMBs
	}
	return 0
}

// WriteLine writes the one-line summary:
//
//	Threads:	4	Read and write bandwidth (MB/s):	     12345.6
func (r *Result) WriteLine(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Threads:\t%d\tRead and write bandwidth (MB/s):\t%12.1f\n", r.Threads, r.Bandwidth())
	return err
}

// WriteTable writes the STREAM summary table, times in seconds.
func (r *Result) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Function\tBest Rate MB/s\tAvg time\tMin time\tMax time")
	for _, st := range r.Phases {
		fmt.Fprintf(tw, "%s:\t%.1f\t%.6f\t%.6f\t%.6f\n",
			st.Phase, st.RateMBs, st.Avg.Seconds(), st.Min.Seconds(), st.Max.Seconds())
	}
	return tw.Flush()
}
