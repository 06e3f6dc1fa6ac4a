package collector

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/host"

	"thingspeakagent/internal/config"
)

// Identity describes the board the agent runs on.
type Identity struct {
	Serial   string
	Hostname string
	Platform string
	HostID   string
}

// ReadIdentity returns the board serial from cpuinfoPath (present on
// Raspberry Pi boards) and host details from gopsutil. Missing values are
// left empty, except that the hostname falls back to os.Hostname and
// the host ID stands in for a missing serial.
func ReadIdentity(ctx context.Context, cpuinfoPath string) Identity {
	var id Identity

	if b, err := os.ReadFile(cpuinfoPath); err == nil {
		id.Serial, _ = ParseSerial(string(b))
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		id.Hostname = info.Hostname
		id.Platform = info.Platform + " " + info.PlatformVersion
		id.HostID = info.HostID
	}

	if id.Hostname == "" {
		id.Hostname = config.GetHostname()
	}
	if id.Serial == "" {
		id.Serial = id.HostID
	}
	return id
}
