package collector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalPattern = regexp.MustCompile(`\d+\.\d+`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// ParseTemperature returns the first decimal number in the output of the
// temperature command, e.g. 56.4 from "temp=56.4'C".
func ParseTemperature(out string) (float64, error) {
	m := decimalPattern.FindString(out)
	if m == "" {
		return 0, fmt.Errorf("no decimal number in %q", strings.TrimSpace(out))
	}
	return strconv.ParseFloat(m, 64)
}

// ParseTaskCount returns the first integer on the "Tasks" line of a
// process summary, e.g. 173 from "Tasks: 173 total,   1 running, ...".
func ParseTaskCount(out string) (int, error) {
	line, ok := findLine(out, "Tasks")
	if !ok {
		return 0, fmt.Errorf("no Tasks line in process summary")
	}
	m := integerPattern.FindString(line)
	if m == "" {
		return 0, fmt.Errorf("no integer in %q", line)
	}
	return strconv.Atoi(m)
}

// ParseSignalLevel returns the signal magnitude from wireless status output.
// For "Link Quality=70/70  Signal level=-40 dBm" it returns 40; the sign is
// dropped and applied by the caller.
func ParseSignalLevel(out string) (int, error) {
	line, ok := findLine(out, "Signal")
	if !ok {
		return 0, fmt.Errorf("no Signal line in wireless status")
	}
	// third '='-separated field holds the level
	field := line
	if parts := strings.Split(line, "="); len(parts) >= 3 {
		field = parts[2]
	} else if len(parts) == 2 {
		field = parts[1]
	}
	m := integerPattern.FindString(field)
	if m == "" {
		return 0, fmt.Errorf("no integer in %q", line)
	}
	return strconv.Atoi(m)
}

// ParseSerial returns the board serial from /proc/cpuinfo content
// ("Serial\t\t: 0000000084d82aad").
func ParseSerial(cpuinfo string) (string, bool) {
	for _, line := range strings.Split(cpuinfo, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "Serial" {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			return v, true
		}
	}
	return "", false
}

func findLine(out, substr string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}
