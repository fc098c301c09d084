// Package timer samples the wall clock for the timed benchmark regions and
// estimates the clock granularity.
package timer

import "time"

// Samples is the number of clock ticks CheckTick observes.
const Samples = 20

// Stamp is one wall-clock sample. It carries the monotonic reading so that
// intervals are immune to clock steps.
type Stamp = time.Time

// Now samples the clock.
func Now() Stamp { return time.Now() }

// Since returns the time elapsed since s.
func Since(s Stamp) time.Duration { return time.Since(s) }

// CheckTick estimates the clock granularity. It collects Samples readings,
// each taken once the clock has advanced by at least one microsecond from
// the previous one, and returns the smallest observed step.
func CheckTick() time.Duration {
	return checkTick(Now)
}

func checkTick(now func() Stamp) time.Duration {
	var stamps [Samples]Stamp

	t1 := now()
	for i := range stamps {
		t2 := now()
		for t2.Sub(t1) < time.Microsecond {
			t2 = now()
		}
		stamps[i] = t2
		t1 = t2
	}

	minDelta := time.Second
	for i := 1; i < len(stamps); i++ {
		delta := stamps[i].Sub(stamps[i-1]).Truncate(time.Microsecond)
		if delta < 0 {
			delta = 0
		}
		if delta < minDelta {
			minDelta = delta
		}
	}
	return minDelta
}

// Ticks returns how many clock ticks of size tick fit into d.
// A zero tick counts d in microseconds.
func Ticks(d, tick time.Duration) int64 {
	if tick <= 0 {
		tick = time.Microsecond
	}
	return int64(d / tick)
}
