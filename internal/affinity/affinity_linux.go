//go:build linux

package affinity

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// setBits is the number of cores a unix.CPUSet can describe.
const setBits = int(unsafe.Sizeof(unix.CPUSet{})) * 8

type unixBinder struct {
	allowed unix.CPUSet
}

func probePlatform() Binder {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return unsupported{}
	}
	return &unixBinder{allowed: set}
}

// Bind pins the calling thread (tid 0) to core.
func (b *unixBinder) Bind(core int) error {
	if core < 0 || core >= setBits {
		return fmt.Errorf("%w: %d", ErrInvalidCore, core)
	}
	if !b.allowed.IsSet(core) {
		return fmt.Errorf("%w: core %d not in the allowed set of this process", ErrInvalidCore, core)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity core %d: %w", core, err)
	}
	return nil
}

func (b *unixBinder) Name() string { return "sched_setaffinity" }

// Allowed returns the cores this process may run on, lowest first.
func Allowed() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil
	}
	var cores []int
	for core := 0; core < setBits && len(cores) < set.Count(); core++ {
		if set.IsSet(core) {
			cores = append(cores, core)
		}
	}
	return cores
}
