//go:build amd64 && !purego

package sse2

import (
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:        "sse2",
		SIMDLevel:   cpu.SIMDSSE2,
		Priority:    10,
		NonTemporal: true,
		CopyBlocks:  CopyBlocks,
	})
}
