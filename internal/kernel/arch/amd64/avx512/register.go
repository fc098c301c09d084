//go:build amd64 && !purego

package avx512

import (
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:        "avx512",
		SIMDLevel:   cpu.SIMDAVX512,
		Priority:    30,
		NonTemporal: true,
		CopyBlocks:  CopyBlocks,
	})
}
