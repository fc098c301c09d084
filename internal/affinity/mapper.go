package affinity

// Mapper maps a worker index to the core it should be pinned to.
type Mapper interface {
	Core(worker int) int
}

// MapperFunc adapts a function to Mapper.
type MapperFunc func(worker int) int

// Core calls f(worker).
func (f MapperFunc) Core(worker int) int { return f(worker) }

// Identity maps worker i to core i.
func Identity() Mapper {
	return MapperFunc(func(worker int) int { return worker })
}

// Compact maps worker i to core i mod ncores, wrapping when there are more
// workers than cores. ncores < 1 behaves like Identity.
func Compact(ncores int) Mapper {
	if ncores < 1 {
		return Identity()
	}
	return MapperFunc(func(worker int) int { return worker % ncores })
}

// Scatter spreads consecutive workers stride cores apart, filling the gaps on
// later passes: with 8 cores and stride 4, workers 0..7 land on cores
// 0,4,1,5,2,6,3,7. This places neighbouring workers on different physical
// cores when hardware threads of one core are numbered stride apart.
//
// The first ncores workers always get distinct cores; when stride does not
// divide ncores the last pass is shorter. Later workers wrap around.
func Scatter(ncores, stride int) Mapper {
	if ncores < 1 || stride < 1 || stride > ncores {
		return Compact(ncores)
	}
	groups := (ncores + stride - 1) / stride
	order := make([]int, 0, ncores)
	for iid := range stride {
		for gid := range groups {
			if core := gid*stride + iid; core < ncores {
				order = append(order, core)
			}
		}
	}
	return MapperFunc(func(worker int) int { return order[worker%len(order)] })
}

// Explicit maps worker i to cores[i mod len(cores)]. An empty list behaves
// like Identity.
func Explicit(cores []int) Mapper {
	if len(cores) == 0 {
		return Identity()
	}
	list := append([]int(nil), cores...)
	return MapperFunc(func(worker int) int { return list[worker%len(list)] })
}
