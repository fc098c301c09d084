// Package bandwidth measures sustained memory bandwidth with a parallel
// streaming copy.
//
// A Benchmark owns three aligned arrays A, B and C. Each Run repeats the
// enabled STREAM phases NTimes times. Within one phase run every worker
// goroutine locks itself to an OS thread, pins that thread to a core, waits
// at a barrier with its peers, executes its kernel on a disjoint range and
// waits at the barrier again. The phase time of a trial is the mean of the
// per-worker elapsed times. Trial 0 is discarded as warm-up and the best
// remaining trial determines the reported rate:
//
//	MB/s = 1e-6 * bytes / min(trial time)
//
// The phases are
//
//	Copy:  B = A
//	Scale: C = s*B
//	Add:   B = A + C
//	Triad: A = C + s*B
//
// with s = 3. Copy uses a non-temporal store kernel on CPUs that have one.
package bandwidth
