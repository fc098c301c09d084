package affinity

import "testing"

func cores(m Mapper, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = m.Core(i)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMappers(t *testing.T) {
	tests := []struct {
		name string
		m    Mapper
		n    int
		want []int
	}{
		{"identity", Identity(), 4, []int{0, 1, 2, 3}},
		{"compact wraps", Compact(3), 5, []int{0, 1, 2, 0, 1}},
		{"compact zero cores", Compact(0), 3, []int{0, 1, 2}},
		{"scatter 8x4", Scatter(8, 4), 8, []int{0, 4, 1, 5, 2, 6, 3, 7}},
		{"scatter 240x4 head", Scatter(240, 4), 3, []int{0, 4, 8}},
		{"scatter bad stride", Scatter(4, 9), 5, []int{0, 1, 2, 3, 0}},
		{"scatter uneven", Scatter(10, 4), 10, []int{0, 4, 8, 1, 5, 9, 2, 6, 3, 7}},
		{"scatter wraps", Scatter(8, 4), 10, []int{0, 4, 1, 5, 2, 6, 3, 7, 0, 4}},
		{"explicit", Explicit([]int{3, 5}), 4, []int{3, 5, 3, 5}},
		{"explicit empty", Explicit(nil), 2, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cores(tt.m, tt.n); !equalInts(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScatterSecondPass(t *testing.T) {
	// Worker 60 on a 240-core, stride-4 layout starts the second pass.
	if got := Scatter(240, 4).Core(60); got != 1 {
		t.Fatalf("Core(60) = %d, want 1", got)
	}
}

func TestScatterDistinctCores(t *testing.T) {
	for ncores := 1; ncores <= 24; ncores++ {
		for stride := 1; stride <= ncores; stride++ {
			seen := make(map[int]bool, ncores)
			for _, c := range cores(Scatter(ncores, stride), ncores) {
				if c < 0 || c >= ncores || seen[c] {
					t.Fatalf("Scatter(%d, %d): core %d out of range or repeated", ncores, stride, c)
				}
				seen[c] = true
			}
		}
	}
}

func TestExplicitCopiesInput(t *testing.T) {
	in := []int{2, 4}
	m := Explicit(in)
	in[0] = 9
	if got := m.Core(0); got != 2 {
		t.Fatalf("Core(0) = %d, want 2", got)
	}
}
