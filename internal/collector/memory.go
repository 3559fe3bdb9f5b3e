package collector

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// CollectMemory reads system memory usage.
func CollectMemory() (*MemoryReading, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}
	return &MemoryReading{
		UsedKB:     vm.Used / 1024,
		FreeKB:     vm.Free / 1024,
		ActiveKB:   vm.Active / 1024,
		InactiveKB: vm.Inactive / 1024,
	}, nil
}

// UptimeSeconds returns seconds since boot.
func UptimeSeconds() (float64, error) {
	up, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return float64(up), nil
}
