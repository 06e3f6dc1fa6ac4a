package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// TaskCounter reports how many tasks the OS is currently running.
type TaskCounter interface {
	CountTasks(ctx context.Context) (int, error)
}

// CommandTaskCounter parses the "Tasks:" summary line of "top -bn1".
type CommandTaskCounter struct {
	Runner  CommandRunner
	Command []string
}

// CountTasks runs the command and parses its summary.
func (c CommandTaskCounter) CountTasks(ctx context.Context) (int, error) {
	out, err := c.Runner.Run(ctx, c.Command)
	if err != nil {
		return 0, sensorErr("tasks", err)
	}
	n, err := ParseTaskCount(out)
	if err != nil {
		return 0, sensorErr("tasks", err)
	}
	return n, nil
}

// ProcessCounter counts process IDs through gopsutil instead of a command.
type ProcessCounter struct{}

// CountTasks returns the number of live PIDs.
func (ProcessCounter) CountTasks(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, sensorErr("tasks", err)
	}
	return len(pids), nil
}
