//go:build windows

package affinity

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
)

type windowsBinder struct{}

func probePlatform() Binder {
	if err := procSetThreadAffinityMask.Find(); err != nil {
		return unsupported{}
	}
	return windowsBinder{}
}

// Bind pins the current thread. Only the first processor group (64 cores) is addressable.
func (windowsBinder) Bind(core int) error {
	if core < 0 || core >= 64 {
		return fmt.Errorf("%w: %d (valid: 0..63)", ErrInvalidCore, core)
	}
	mask := uintptr(1) << uint(core)
	old, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if old == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask core %d: %w", core, err)
	}
	return nil
}

func (windowsBinder) Name() string { return "SetThreadAffinityMask" }

// Allowed returns nil; the process mask is not queried on Windows.
func Allowed() []int { return nil }
