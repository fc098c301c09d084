package affinity

import (
	"errors"
	"runtime"
	"testing"
)

func TestDisabled(t *testing.T) {
	b := Disabled()
	if err := b.Bind(1 << 20); err != nil {
		t.Fatalf("Disabled.Bind: %v", err)
	}
	if b.Name() != "disabled" {
		t.Fatalf("Name = %q", b.Name())
	}
}

func TestUnsupported(t *testing.T) {
	err := Unsupported().Bind(0)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestProbeBindAllowedCore(t *testing.T) {
	b := Probe()
	allowed := Allowed()
	if b.Name() == "unsupported" || len(allowed) == 0 {
		t.Skip("affinity not available here")
	}

	done := make(chan error, 1)
	go func() {
		// The pinned thread exits with the goroutine.
		runtime.LockOSThread()
		done <- b.Bind(allowed[0])
	}()
	if err := <-done; err != nil {
		t.Fatalf("Bind(%d): %v", allowed[0], err)
	}
}

func TestProbeBindInvalidCore(t *testing.T) {
	b := Probe()
	if b.Name() == "unsupported" {
		t.Skip("affinity not available here")
	}

	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		done <- b.Bind(-1)
	}()
	if err := <-done; !errors.Is(err, ErrInvalidCore) {
		t.Fatalf("err = %v, want ErrInvalidCore", err)
	}
}
