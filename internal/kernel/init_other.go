//go:build !amd64 || purego

package kernel

// Only the generic kernel exists for this build; it registers itself through
// the direct import in kernel.go.
