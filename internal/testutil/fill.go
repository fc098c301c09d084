package testutil

import "golang.org/x/exp/constraints"

// Ramp returns a slice of length n with x[i] = start + i*step.
func Ramp[T constraints.Float](n int, start, step T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = start + T(i)*step
	}
	return out
}

// Const returns a slice of length n filled with v.
func Const[T constraints.Float](n int, v T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = v
	}
	return out
}
