//go:build amd64 && !purego

package avx

import (
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:        "avx",
		SIMDLevel:   cpu.SIMDAVX,
		Priority:    20,
		NonTemporal: true,
		CopyBlocks:  CopyBlocks,
	})
}
