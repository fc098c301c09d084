//go:build !linux

package buffer

func adviseHuge([]byte) error { return ErrHugeUnsupported }
