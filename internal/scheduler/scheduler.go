// Package scheduler runs the collect-and-publish loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"thingspeakagent/internal/collector"
	"thingspeakagent/internal/logger"
	"thingspeakagent/internal/sender"
)

// Collector produces one reading per call. Collect blocks for roughly
// Interval while the CPU is sampled.
type Collector interface {
	Collect(ctx context.Context) (*collector.Reading, error)
	Interval() time.Duration
}

// Scheduler runs cycles strictly one after another: collect, print, publish.
// There is no timer; the CPU sampling window paces the loop.
type Scheduler struct {
	collector Collector
	sender    sender.Sender
	console   io.Writer
	clock     clock.Clock
	log       *zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	cycles  uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConsole sets where the per-cycle reading line is printed. A nil
// writer disables the line.
func WithConsole(w io.Writer) Option {
	return func(s *Scheduler) { s.console = w }
}

// WithClock replaces the wall clock used for pacing after failed collections.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger pins the logger. Without it the global component logger is
// looked up per use so logging reloads take effect.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = &l }
}

// New creates a scheduler. The reading line goes to stdout unless
// WithConsole says otherwise.
func New(c Collector, snd sender.Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		collector: c,
		sender:    snd,
		console:   os.Stdout,
		clock:     clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes cycles until ctx is cancelled, then returns nil. Sensor and
// publish failures are logged and the next cycle starts. Any other error
// ends the loop and is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	log := s.componentLog()
	log.Info().Dur("interval", s.collector.Interval()).Msg("Starting loop")

	for {
		start := s.clock.Now()
		err := s.cycle(ctx)
		log = s.componentLog()

		if ctx.Err() != nil {
			log.Info().Uint64("cycles", s.Cycles()).Msg("Loop stopped")
			return nil
		}

		switch {
		case err == nil:
		case errors.Is(err, collector.ErrSensorUnavailable):
			log.Warn().Err(err).Msg("Reading skipped")
			s.pause(ctx, start)
		case errors.Is(err, sender.ErrPublish):
			log.Error().Err(err).Msg("There was an error while publishing the data")
		default:
			log.Error().Err(err).Msg("Loop terminated")
			return err
		}
	}
}

// RunOnce executes a single cycle and returns its error unfiltered.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.cycle(ctx)
}

func (s *Scheduler) cycle(ctx context.Context) error {
	r, err := s.collector.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, collector.ErrSensorUnavailable) {
			return err
		}
		return fmt.Errorf("collect: %w", err)
	}
	if r == nil {
		return fmt.Errorf("collect: no reading returned")
	}
	// An interrupt that lands after sampling still suppresses the publish.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if s.console != nil {
		fmt.Fprintln(s.console, r.String())
	}
	log := s.componentLog()
	log.Debug().
		Float64("cpu", r.CPUPercent).
		Float64("ram", r.RAMPercent).
		Float64("temp", r.CPUTempC).
		Int("tasks", r.TaskCount).
		Int("rssi", r.RSSIDbm).
		Msg("Reading collected")

	if err := s.sender.Send(ctx, r); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, sender.ErrPublish) {
			return err
		}
		return fmt.Errorf("send: %w", err)
	}

	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) componentLog() zerolog.Logger {
	if s.log != nil {
		return *s.log
	}
	return logger.WithComponent("scheduler")
}

// pause waits out the rest of the interval after a collection that failed
// early, so a broken sensor does not spin the loop.
func (s *Scheduler) pause(ctx context.Context, start time.Time) {
	remaining := s.collector.Interval() - s.clock.Since(start)
	if remaining <= 0 {
		return
	}
	t := s.clock.Timer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Cycles returns the number of readings published so far.
func (s *Scheduler) Cycles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Start runs the loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.err = nil

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done

	go func() {
		err := s.Run(ctx)
		s.mu.Lock()
		s.err = err
		s.running = false
		s.mu.Unlock()
		close(done)
	}()
	return nil
}

// Stop cancels the loop and waits for the current cycle to end. It
// returns the error the loop ended with, if any.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	log := s.componentLog()
	log.Info().Msg("Stopping scheduler, waiting for the current cycle")
	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when a started loop exits. It is nil before Start.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// IsRunning returns whether the loop goroutine is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
