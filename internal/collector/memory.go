package collector

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/mem"
)

// RAMPercent returns the share of physical memory not available to new
// allocations, (total - available) / total.
func (HostSampler) RAMPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return memoryPercent(vm)
}

func memoryPercent(vm *mem.VirtualMemoryStat) (float64, error) {
	if vm.Total == 0 {
		return 0, errors.New("total memory reported as zero")
	}
	avail := vm.Available
	if avail > vm.Total {
		avail = vm.Total
	}
	return roundTenth(float64(vm.Total-avail) / float64(vm.Total) * 100), nil
}
