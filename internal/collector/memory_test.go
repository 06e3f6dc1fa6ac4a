package collector

import (
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
)

func TestMemoryPercent_UsesAvailable(t *testing.T) {
	vm := &mem.VirtualMemoryStat{Total: 1000, Available: 250, Used: 400, UsedPercent: 40}
	got, err := memoryPercent(vm)
	if err != nil {
		t.Fatal(err)
	}
	if got != 75 {
		t.Errorf("memoryPercent = %v, want 75", got)
	}
}

func TestMemoryPercent_Bounds(t *testing.T) {
	if _, err := memoryPercent(&mem.VirtualMemoryStat{}); err == nil {
		t.Error("expected error for zero total")
	}
	got, err := memoryPercent(&mem.VirtualMemoryStat{Total: 100, Available: 150})
	if err != nil || got != 0 {
		t.Errorf("memoryPercent = (%v, %v), want (0, nil)", got, err)
	}
}
