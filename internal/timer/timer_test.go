package timer

import (
	"testing"
	"time"
)

func TestSinceMonotonic(t *testing.T) {
	s := Now()
	time.Sleep(2 * time.Millisecond)
	if d := Since(s); d < 2*time.Millisecond {
		t.Fatalf("Since = %v, want >= 2ms", d)
	}
}

func TestCheckTickFakeClock(t *testing.T) {
	base := time.Unix(0, 0)
	var calls int
	// Each reading advances 3us.
	now := func() Stamp {
		calls++
		return base.Add(time.Duration(calls) * 3 * time.Microsecond)
	}

	if got := checkTick(now); got != 3*time.Microsecond {
		t.Fatalf("checkTick = %v, want 3us", got)
	}
}

func TestCheckTickReal(t *testing.T) {
	tick := CheckTick()
	if tick < time.Microsecond || tick > time.Second {
		t.Fatalf("CheckTick = %v, want within [1us, 1s]", tick)
	}
}

func TestTicks(t *testing.T) {
	if got := Ticks(10*time.Millisecond, time.Microsecond); got != 10000 {
		t.Fatalf("Ticks = %d, want 10000", got)
	}
	if got := Ticks(5*time.Microsecond, 0); got != 5 {
		t.Fatalf("Ticks with zero tick = %d, want 5", got)
	}
}
