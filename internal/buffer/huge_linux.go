//go:build linux

package buffer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func adviseHuge(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_HUGEPAGE); err != nil {
		return fmt.Errorf("%w: madvise: %w", ErrHugeUnsupported, err)
	}
	return nil
}
