package bandwidth

import (
	"fmt"

	"github.com/eapache/queue"

	"github.com/cwbudde/algo-membw/internal/kernel"
)

// settleRatio is the largest avg/min time ratio of a settled phase.
const settleRatio = 1.5

// SweepCounts returns the thread counts 1..maxThreads.
func SweepCounts(maxThreads int) []int {
	counts := make([]int, 0, max(maxThreads, 0))
	for n := 1; n <= maxThreads; n++ {
		counts = append(counts, n)
	}
	return counts
}

// SweepConfig controls Sweep.
type SweepConfig struct {
	// Retries is how many more times an unsettled count is measured.
	Retries int

	// Unsettled reports whether a result should be measured again.
	// Nil selects Unsettled.
	Unsettled func(*Result) bool
}

// Unsettled reports whether r looks disturbed: a phase whose best time is
// below the clock resolution threshold, or whose average trial exceeds the
// best by more than half.
func Unsettled(r *Result) bool {
	for _, w := range r.Warnings {
		if w.Kind == WarnClock {
			return true
		}
	}
	for _, st := range r.Phases {
		if st.Min > 0 && float64(st.Avg) > settleRatio*float64(st.Min) {
			return true
		}
	}
	return false
}

type sweepItem struct {
	index   int // position in counts
	threads int
	attempt int
}

// Sweep runs b once per thread count and returns one Result per count, in
// the order of counts. Unsettled counts go to the back of the queue and are
// measured again, up to cfg.Retries times; the run with the higher
// bandwidth is kept. Sweep stops at the first failing run and returns the
// results measured so far, in order, together with the error.
func Sweep[T kernel.Element](b *Benchmark[T], counts []int, cfg SweepConfig) ([]*Result, error) {
	unsettled := cfg.Unsettled
	if unsettled == nil {
		unsettled = Unsettled
	}

	pending := queue.New()
	for i, n := range counts {
		pending.Add(sweepItem{index: i, threads: n})
	}

	slots := make([]*Result, len(counts))
	for pending.Length() > 0 {
		item := pending.Remove().(sweepItem)
		res, err := b.RunThreads(item.threads)
		if err != nil {
			return compact(slots), fmt.Errorf("bandwidth: sweep at %d threads: %w", item.threads, err)
		}

		log := b.log.WithField("threads", item.threads)
		if prev := slots[item.index]; prev == nil || res.Bandwidth() > prev.Bandwidth() {
			slots[item.index] = res
		}
		if unsettled(res) && item.attempt < cfg.Retries {
			log.WithField("attempt", item.attempt+1).Infof("%.1f MB/s unsettled, measuring again", res.Bandwidth())
			item.attempt++
			pending.Add(item)
			continue
		}
		log.Infof("%.1f MB/s", slots[item.index].Bandwidth())
	}
	return compact(slots), nil
}

func compact(slots []*Result) []*Result {
	out := make([]*Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
