// Package service runs the agent under a process supervisor such as
// systemd, translating termination signals into context cancellation.
package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"thingspeakagent/internal/logger"
)

// RunFunc is the agent body. It must return once ctx is cancelled.
type RunFunc func(ctx context.Context) error

// Service runs a RunFunc until it returns or a shutdown signal arrives.
type Service struct {
	runFunc RunFunc
	signals []os.Signal

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewService creates a service that stops on SIGINT or SIGTERM.
func NewService(runFunc RunFunc) *Service {
	return &Service{
		runFunc: runFunc,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Run blocks until runFunc returns. The first signal cancels its context
// and waits for it to finish the current cycle; a second signal returns
// immediately.
func (s *Service) Run(ctx context.Context) error {
	log := logger.WithComponent("service")

	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	defer s.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, s.signals...)
	defer signal.Stop(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- s.runFunc(ctx)
	}()

	log.Info().Bool("supervised", IsService()).Msg("Service started")

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		s.Stop()

		select {
		case err := <-done:
			return err
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing exit")
			return nil
		}

	case err := <-done:
		return err
	}
}

// Stop cancels the running agent. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil && !s.stopped {
		s.stopped = true
		s.cancel()
	}
}

// IsService reports whether stdin is not a terminal, which is how the
// agent runs under systemd.
func IsService() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}
