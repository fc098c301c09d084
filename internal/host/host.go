// Package host collects the machine facts printed next to a bandwidth figure
// and used to sanity check a configuration before allocation.
package host

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info describes the host. Zero fields mean the value could not be read.
type Info struct {
	Model           string `json:"model,omitempty"`
	LogicalCores    int    `json:"logical_cores"`
	PhysicalCores   int    `json:"physical_cores,omitempty"`
	TotalMemory     uint64 `json:"total_memory,omitempty"`
	AvailableMemory uint64 `json:"available_memory,omitempty"`
	GOOS            string `json:"goos"`
	GOARCH          string `json:"goarch"`
}

// Probe gathers Info. Lookups that fail leave their fields zero;
// LogicalCores falls back to runtime.NumCPU.
func Probe() Info {
	info := Info{
		LogicalCores: runtime.NumCPU(),
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
	}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.LogicalCores = n
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = n
	}
	if stats, err := cpu.Info(); err == nil && len(stats) > 0 {
		info.Model = stats[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
		info.AvailableMemory = vm.Available
	}

	return info
}

// AvailableMemory returns the bytes the kernel reports as available for new
// allocations without swapping.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("host: virtual memory: %w", err)
	}
	return vm.Available, nil
}
