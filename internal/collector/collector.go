// Package collector gathers the host metrics published each cycle.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"thingspeakagent/internal/config"
	"thingspeakagent/internal/logger"
)

// Collector builds a Reading from the host.
type Collector struct {
	interval    time.Duration
	sampler     UsageSampler
	temperature TemperatureProbe
	tasks       TaskCounter
	signal      SignalProbe
	clock       clock.Clock
}

// Option overrides one of the collector's sources.
type Option func(*Collector)

// WithSampler replaces the CPU/RAM sampler.
func WithSampler(s UsageSampler) Option { return func(c *Collector) { c.sampler = s } }

// WithTemperatureProbe replaces the temperature source.
func WithTemperatureProbe(p TemperatureProbe) Option {
	return func(c *Collector) { c.temperature = p }
}

// WithTaskCounter replaces the task count source.
func WithTaskCounter(t TaskCounter) Option { return func(c *Collector) { c.tasks = t } }

// WithSignalProbe replaces the wireless signal source.
func WithSignalProbe(p SignalProbe) Option { return func(c *Collector) { c.signal = p } }

// WithClock sets the clock used for reading timestamps.
func WithClock(clk clock.Clock) Option { return func(c *Collector) { c.clock = clk } }

// New creates a collector from configuration. Sources not overridden by
// opts are built from cfg.
func New(cfg config.CollectorConfig, opts ...Option) *Collector {
	runner := ExecRunner{Timeout: cfg.CommandTimeout}

	c := &Collector{
		interval: cfg.Interval,
		sampler:  HostSampler{},
		signal: CommandSignal{
			Runner:    runner,
			Command:   cfg.WirelessCommand,
			Interface: cfg.WirelessInterface,
		},
		clock: clock.New(),
	}

	switch cfg.TemperatureSource {
	case config.TemperatureSysfs:
		c.temperature = SysfsTemperature{Path: cfg.ThermalZonePath}
	default:
		c.temperature = CommandTemperature{Runner: runner, Command: cfg.TemperatureCommand}
	}

	switch cfg.TaskSource {
	case config.TasksProcfs:
		c.tasks = ProcessCounter{}
	default:
		c.tasks = CommandTaskCounter{Runner: runner, Command: cfg.TaskCommand}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the CPU sampling window.
func (c *Collector) Interval() time.Duration {
	return c.interval
}

// Collect samples CPU usage for the configured interval, then reads the
// remaining metrics. It blocks for at least Interval. If ctx is cancelled
// while sampling, ctx.Err() is returned. Any source failure is returned as
// a *SensorError and no partial Reading is produced.
func (c *Collector) Collect(ctx context.Context) (*Reading, error) {
	cpuPct, err := c.sampler.CPUPercent(ctx, c.interval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, sensorErr("cpu", err)
	}

	ramPct, err := c.sampler.RAMPercent(ctx)
	if err != nil {
		return nil, sensorErr("ram", err)
	}

	temp, err := c.temperature.ReadTemperature(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := c.tasks.CountTasks(ctx)
	if err != nil {
		return nil, err
	}

	magnitude, err := c.signal.SignalMagnitude(ctx)
	if err != nil {
		return nil, err
	}
	if magnitude < 0 {
		magnitude = -magnitude
	}

	return &Reading{
		CPUPercent: cpuPct,
		RAMPercent: ramPct,
		CPUTempC:   temp,
		TaskCount:  tasks,
		RSSIDbm:    -magnitude,
		Timestamp:  c.clock.Now(),
	}, nil
}

// ProbeResult holds the one-off sensor readings logged at startup.
type ProbeResult struct {
	CPUTempC  float64
	TaskCount int
	RSSIDbm   int
}

// Probe reads temperature, task count and signal level once without the
// CPU sampling window. Every source is tried; the first failure is
// returned along with whatever was read.
func (c *Collector) Probe(ctx context.Context) (ProbeResult, error) {
	log := logger.WithComponent("collector")

	var res ProbeResult
	var firstErr error
	note := func(err error) {
		log.Warn().Err(err).Msg("Startup probe failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if v, err := c.temperature.ReadTemperature(ctx); err != nil {
		note(err)
	} else {
		res.CPUTempC = v
	}
	if v, err := c.tasks.CountTasks(ctx); err != nil {
		note(err)
	} else {
		res.TaskCount = v
	}
	if v, err := c.signal.SignalMagnitude(ctx); err != nil {
		note(err)
	} else {
		if v < 0 {
			v = -v
		}
		res.RSSIDbm = -v
	}

	if firstErr != nil {
		return res, fmt.Errorf("startup probe: %w", firstErr)
	}
	return res, nil
}
