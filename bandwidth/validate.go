package bandwidth

import (
	"math"
	"unsafe"

	"github.com/cwbudde/algo-membw/internal/kernel"
)

// Initial array values written before the first trial of every Run.
const (
	InitA = 1.0
	InitB = 2.0
	InitC = 0.0
)

// ArrayCheck is the validation outcome of one array.
type ArrayCheck struct {
	Name      string  `json:"name"`
	Expected  float64 `json:"expected"`
	AvgAbsErr float64 `json:"avg_abs_err"`

	// Errors counts processed elements whose relative error exceeds epsilon.
	// It is only computed when the average error fails.
	Errors int `json:"errors"`

	// TailErrors counts unprocessed elements that lost their initial value.
	TailErrors int `json:"tail_errors"`
}

// Failed reports whether the array failed validation.
func (c ArrayCheck) Failed() bool { return c.Errors > 0 || c.TailErrors > 0 }

// Validation compares the arrays with the values the scalar recurrence of
// the enabled phases predicts.
type Validation struct {
	Epsilon float64       `json:"epsilon"`
	Arrays  [3]ArrayCheck `json:"arrays"`
}

// Passed reports whether every array matched.
func (v *Validation) Passed() bool {
	for _, c := range v.Arrays {
		if c.Failed() {
			return false
		}
	}
	return true
}

// Epsilon returns the relative error bound for T: 1e-6 for float32 and
// 1e-13 for float64.
func Epsilon[T kernel.Element]() float64 {
	var zero T
	if unsafe.Sizeof(zero) == 8 {
		return 1e-13
	}
	return 1e-6
}

// Expected replays ntimes trials of phases on scalars, in element precision,
// and returns the values every processed element of A, B and C should hold.
func Expected[T kernel.Element](phases []Phase, ntimes int) (a, b, c T) {
	var on [NumPhases]bool
	for _, p := range phases {
		if p >= 0 && p < NumPhases {
			on[p] = true
		}
	}

	a, b, c = InitA, InitB, InitC
	s := T(Scalar)
	for range ntimes {
		if on[PhaseCopy] {
			b = a
		}
		if on[PhaseScale] {
			c = s * b
		}
		if on[PhaseAdd] {
			b = a + c
		}
		if on[PhaseTriad] {
			a = c + s*b
		}
	}
	return a, b, c
}

// validate checks arrays whose first covered elements went through ntimes
// trials of phases; elements from covered on must still hold their initial
// values.
func validate[T kernel.Element](arrays [3][]T, covered int, phases []Phase, ntimes int) *Validation {
	aj, bj, cj := Expected[T](phases, ntimes)
	eps := Epsilon[T]()

	out := &Validation{Epsilon: eps}
	names := [3]string{"a", "b", "c"}
	want := [3]T{aj, bj, cj}
	seed := [3]T{InitA, InitB, InitC}

	for i, x := range arrays {
		check := ArrayCheck{Name: names[i], Expected: float64(want[i])}
		n := min(covered, len(x))

		var sum float64
		for _, e := range x[:n] {
			sum += math.Abs(float64(e) - float64(want[i]))
		}
		if n > 0 {
			check.AvgAbsErr = sum / float64(n)
		}
		if relErr(check.AvgAbsErr, check.Expected) > eps {
			for _, e := range x[:n] {
				if relErr(float64(e)-check.Expected, check.Expected) > eps {
					check.Errors++
				}
			}
		}
		for _, e := range x[n:] {
			if e != seed[i] {
				check.TailErrors++
			}
		}
		out.Arrays[i] = check
	}
	return out
}

// relErr returns |err/ref|, or |err| when ref is zero.
func relErr(err, ref float64) float64 {
	if ref == 0 {
		return math.Abs(err)
	}
	return math.Abs(err / ref)
}
