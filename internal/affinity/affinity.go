// Package affinity pins benchmark worker threads to processor cores.
//
// Pinning is best effort. The Binder returned by Probe reports failures as
// errors, and callers treat them as warnings: an unpinned worker still
// produces a measurement, just a noisier one.
package affinity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by binders on platforms without thread affinity.
	ErrUnsupported = errors.New("affinity: not supported on this platform")

	// ErrInvalidCore is returned for a negative or out-of-range core index.
	ErrInvalidCore = errors.New("affinity: invalid core index")
)

// Binder restricts the calling OS thread to a single core.
//
// Bind must run on the goroutine that does the work, after
// runtime.LockOSThread, so that the pinned thread is the one executing it.
type Binder interface {
	Bind(core int) error
	Name() string
}

// Probe returns the binder for the running platform: a sched_setaffinity
// binder on Linux, SetThreadAffinityMask on Windows, Unsupported elsewhere
// or when the platform call is unavailable.
func Probe() Binder {
	return probePlatform()
}

// Disabled returns a binder that never pins and never fails.
func Disabled() Binder { return disabled{} }

// Unsupported returns a binder whose Bind always fails with ErrUnsupported.
func Unsupported() Binder { return unsupported{} }

type disabled struct{}

func (disabled) Bind(int) error { return nil }
func (disabled) Name() string   { return "disabled" }

type unsupported struct{}

func (unsupported) Bind(core int) error {
	return fmt.Errorf("%w: core %d", ErrUnsupported, core)
}
func (unsupported) Name() string { return "unsupported" }
