//go:build amd64 && !purego

package kernel

// This file imports amd64-specific kernel packages to trigger their init()
// functions, which register implementations with the global registry.

import (
	// Generic implementation (pure Go fallback)
	_ "github.com/cwbudde/algo-membw/internal/kernel/arch/generic"

	// AMD64 streaming store implementations
	_ "github.com/cwbudde/algo-membw/internal/kernel/arch/amd64/avx"
	_ "github.com/cwbudde/algo-membw/internal/kernel/arch/amd64/avx512"
	_ "github.com/cwbudde/algo-membw/internal/kernel/arch/amd64/sse2"
)
