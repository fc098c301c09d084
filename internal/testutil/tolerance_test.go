package testutil

import (
	"testing"
	"time"
)

func TestWithinRatio(t *testing.T) {
	tests := []struct {
		a, b  time.Duration
		ratio float64
		want  bool
	}{
		{100, 140, 1.5, true},
		{140, 100, 1.5, true},
		{100, 160, 1.5, false},
		{0, 0, 1.5, true},
		{0, 10, 1.5, false},
	}

	for _, tt := range tests {
		if got := WithinRatio(tt.a, tt.b, tt.ratio); got != tt.want {
			t.Errorf("WithinRatio(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.ratio, got, tt.want)
		}
	}
}

func TestRampAndConst(t *testing.T) {
	r := Ramp[float32](4, 1, 0.5)
	RequireSliceEqual(t, r, []float32{1, 1.5, 2, 2.5})

	c := Const(3, 2.0)
	RequireAll(t, c, 2.0)
	if len(c) != 3 {
		t.Fatalf("len = %d, want 3", len(c))
	}
}
