package collector

import (
	"context"
)

// SignalProbe reads the wireless signal level as a non-negative magnitude.
type SignalProbe interface {
	SignalMagnitude(ctx context.Context) (int, error)
}

// CommandSignal runs a wireless status command ("iwconfig <iface>") and
// parses the signal level line.
type CommandSignal struct {
	Runner    CommandRunner
	Command   []string
	Interface string
}

// SignalMagnitude runs the command for the interface and parses its output.
func (p CommandSignal) SignalMagnitude(ctx context.Context) (int, error) {
	argv := append(append([]string{}, p.Command...), p.Interface)
	out, err := p.Runner.Run(ctx, argv)
	if err != nil {
		return 0, sensorErr("rssi", err)
	}
	n, err := ParseSignalLevel(out)
	if err != nil {
		return 0, sensorErr("rssi", err)
	}
	return n, nil
}
