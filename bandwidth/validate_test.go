package bandwidth

import (
	"testing"

	"github.com/cwbudde/algo-membw/internal/testutil"
)

func TestExpected(t *testing.T) {
	tests := []struct {
		name    string
		phases  []Phase
		ntimes  int
		a, b, c float64
	}{
		{"copy", []Phase{PhaseCopy}, 10, 1, 1, 0},
		{"none", nil, 3, 1, 2, 0},
		{"all once", []Phase{PhaseCopy, PhaseScale, PhaseAdd, PhaseTriad}, 1, 15, 4, 3},
		{"all twice", []Phase{PhaseCopy, PhaseScale, PhaseAdd, PhaseTriad}, 2, 225, 60, 45},
		{"scale", []Phase{PhaseScale}, 2, 1, 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := Expected[float64](tt.phases, tt.ntimes)
			if a != tt.a || b != tt.b || c != tt.c {
				t.Fatalf("got (%v, %v, %v), want (%v, %v, %v)", a, b, c, tt.a, tt.b, tt.c)
			}
		})
	}
}

func TestEpsilon(t *testing.T) {
	if Epsilon[float32]() != 1e-6 {
		t.Fatalf("float32 epsilon = %v", Epsilon[float32]())
	}
	if Epsilon[float64]() != 1e-13 {
		t.Fatalf("float64 epsilon = %v", Epsilon[float64]())
	}
}

func TestValidateCountsErrors(t *testing.T) {
	const n, covered = 64, 48
	arrays := [3][]float32{
		testutil.Const[float32](n, 1),
		testutil.Const[float32](n, 1),
		testutil.Const[float32](n, 0),
	}
	// Tail of B keeps its initial value.
	for j := covered; j < n; j++ {
		arrays[1][j] = InitB
	}

	v := validate(arrays, covered, []Phase{PhaseCopy}, 10)
	if !v.Passed() {
		t.Fatalf("clean arrays failed: %+v", v.Arrays)
	}

	arrays[1][3] = 7
	arrays[1][5] = -1
	arrays[2][covered+1] = 9

	v = validate(arrays, covered, []Phase{PhaseCopy}, 10)
	if v.Passed() {
		t.Fatal("corrupted arrays passed")
	}
	if got := v.Arrays[1].Errors; got != 2 {
		t.Fatalf("b errors = %d, want 2", got)
	}
	if got := v.Arrays[2].TailErrors; got != 1 {
		t.Fatalf("c tail errors = %d, want 1", got)
	}
	if v.Arrays[0].Failed() {
		t.Fatalf("a failed: %+v", v.Arrays[0])
	}
}
