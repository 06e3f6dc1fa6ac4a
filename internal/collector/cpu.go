package collector

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// UsageSampler measures CPU and memory utilization.
type UsageSampler interface {
	// CPUPercent blocks for interval and returns the average utilization
	// over that window.
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)

	// RAMPercent returns the current share of memory in use.
	RAMPercent(ctx context.Context) (float64, error)
}

// HostSampler reads utilization from the host through gopsutil.
type HostSampler struct{}

// CPUPercent samples total CPU usage across all cores over interval.
func (HostSampler) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, errors.New("no cpu usage reported")
	}
	return roundTenth(percentages[0]), nil
}

// roundTenth rounds to one decimal place and clamps to [0,100].
func roundTenth(v float64) float64 {
	v = math.Round(v*10) / 10
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
