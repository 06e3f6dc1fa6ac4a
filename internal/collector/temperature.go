package collector

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TemperatureProbe reads the CPU temperature in degrees Celsius.
type TemperatureProbe interface {
	ReadTemperature(ctx context.Context) (float64, error)
}

// CommandTemperature runs a sensor query such as "vcgencmd measure_temp"
// and scans its output for the first decimal number.
type CommandTemperature struct {
	Runner  CommandRunner
	Command []string
}

// ReadTemperature runs the command and parses its output.
func (p CommandTemperature) ReadTemperature(ctx context.Context) (float64, error) {
	out, err := p.Runner.Run(ctx, p.Command)
	if err != nil {
		return 0, sensorErr("temperature", err)
	}
	v, err := ParseTemperature(out)
	if err != nil {
		return 0, sensorErr("temperature", err)
	}
	return v, nil
}

// SysfsTemperature reads a thermal zone file holding millidegrees Celsius.
type SysfsTemperature struct {
	Path string
}

// ReadTemperature reads and converts the thermal zone value.
func (p SysfsTemperature) ReadTemperature(_ context.Context) (float64, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, sensorErr("temperature", err)
	}
	s := strings.TrimSpace(string(b))
	milli, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, sensorErr("temperature", fmt.Errorf("parse %s %q: %w", p.Path, s, err))
	}
	return float64(milli) / 1000, nil
}
