//go:build !linux && !windows

package affinity

func probePlatform() Binder { return unsupported{} }

// Allowed returns nil on platforms without affinity support.
func Allowed() []int { return nil }
