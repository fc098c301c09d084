package generic

import (
	"github.com/cwbudde/algo-membw/internal/cpu"
	"github.com/cwbudde/algo-membw/internal/kernel/registry"
)

// init registers the generic (pure Go) copy kernel with the registry.
//
// It is the baseline fallback when no SIMD kernel is available or when
// ForceGeneric is set.
//
// Priority: 0 (lowest - used only when no SIMD alternatives are available)
func init() {
	registry.Global.Register(registry.OpEntry{
		Name:       "generic",
		SIMDLevel:  cpu.SIMDNone,
		Priority:   0,
		CopyBlocks: CopyBlocks,
	})
}
