package testutil

import (
	"math"
	"testing"
	"time"

	"golang.org/x/exp/constraints"
)

// RequireSliceEqual fails t if got and want differ in length or in any element.
func RequireSliceEqual[T constraints.Float](t *testing.T, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireAll fails t if any element of x differs from v.
func RequireAll[T constraints.Float](t *testing.T, x []T, v T) {
	t.Helper()
	for i := range x {
		if x[i] != v {
			t.Fatalf("index %d: got %v, want %v", i, x[i], v)
		}
	}
}

// WithinRatio reports whether max(a, b)/min(a, b) <= ratio.
// Two zero durations are within any ratio.
func WithinRatio(a, b time.Duration, ratio float64) bool {
	if a > b {
		a, b = b, a
	}
	if b == 0 {
		return true
	}
	if a <= 0 {
		return false
	}
	return float64(b)/float64(a) <= ratio
}
