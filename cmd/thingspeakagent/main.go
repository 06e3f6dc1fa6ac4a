// Package main is the entry point for the ThingSpeakAgent application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"thingspeakagent/internal/collector"
	"thingspeakagent/internal/config"
	"thingspeakagent/internal/logger"
	"thingspeakagent/internal/network"
	"thingspeakagent/internal/scheduler"
	"thingspeakagent/internal/sender"
	"thingspeakagent/internal/service"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "conf/ThingSpeakAgent/ThingSpeakAgent.json", "Path to main configuration file")
		loggingPath = flag.String("logging", "conf/ThingSpeakAgent/Logging.json", "Path to logging configuration file")
		envPath     = flag.String("env", ".env", "Path to optional .env file with channel credentials")
		once        = flag.Bool("once", false, "Collect and publish a single reading, then exit")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ThingSpeakAgent %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if service.IsService() {
		logger.SetServiceMode(true)
	}

	cfg, lc, err := config.LoadSplit(*configPath, *loggingPath, *envPath)
	if err != nil {
		startupFailed("Failed to load configuration", err)
	}

	if err := logger.Init(*lc); err != nil {
		startupFailed("Failed to initialize logger", err)
	}

	log := logger.WithComponent("main")
	log.Info().
		Str("version", version).
		Str("config", *configPath).
		Str("logging", *loggingPath).
		Msg("Starting ThingSpeakAgent")

	if *once {
		if err := runOnce(cfg, lc); err != nil {
			log.Error().Err(err).Msg("Single cycle failed")
			os.Exit(1)
		}
		return
	}

	svc := service.NewService(func(ctx context.Context) error {
		return run(ctx, cfg, lc, *loggingPath)
	})

	if err := svc.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Service exited with error")
	}

	log.Info().Msg("ThingSpeakAgent stopped")
}

func startupFailed(msg string, err error) {
	service.WriteStartupErrorFile(service.StartupErrorDir, err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// announce logs the board identity and a one-off sensor probe, the way the
// agent introduces itself on the serial console at boot.
func announce(ctx context.Context, cfg *config.Config, col *collector.Collector) {
	log := logger.WithComponent("main")

	id := collector.ReadIdentity(ctx, cfg.Collector.CPUInfoPath)
	ev := log.Info().
		Str("serial", id.Serial).
		Str("hostname", id.Hostname).
		Str("platform", id.Platform)

	if ips, err := network.InterfaceIPv4(cfg.Collector.WirelessInterface); err == nil && len(ips) > 0 {
		ev = ev.Strs("ip", ips)
	} else if ips, err := network.LocalIPv4(); err == nil {
		ev = ev.Strs("ip", ips)
	}
	ev.Str("topic", sender.MaskTopic(cfg.Topic())).Msg("Agent initialized")

	probe, err := col.Probe(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Startup probe incomplete")
	}
	log.Info().
		Float64("temp", probe.CPUTempC).
		Int("tasks", probe.TaskCount).
		Int("rssi", probe.RSSIDbm).
		Msg("Startup probe")
}

func consoleWriter(cfg *config.Config) io.Writer {
	if !cfg.Console {
		return nil
	}
	return os.Stdout
}

// setupSender creates the sender. Logging.json Console is the master
// switch for the file sender's stdout echo.
func setupSender(cfg *config.Config, lc *logger.Config) (sender.Sender, error) {
	cfg.File.Console = lc.Console

	snd, err := sender.NewSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}
	return snd, nil
}

func closeSender(snd sender.Sender) {
	log := logger.WithComponent("main")
	log.Info().Msg("Closing sender")
	if err := snd.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing sender")
	}
}

// setupLoggingWatcher hot-reloads Logging.json. The main configuration is
// fixed for the process lifetime. Returns a cleanup function.
func setupLoggingWatcher(snd sender.Sender, loggingPath string) func() {
	log := logger.WithComponent("main")
	var mu sync.Mutex

	w, err := config.NewLoggingWatcher(loggingPath, func(newLC *logger.Config) {
		mu.Lock()
		defer mu.Unlock()

		if err := logger.Init(*newLC); err != nil {
			log.Error().Err(err).Msg("Failed to update logging configuration")
			return
		}
		if fs, ok := snd.(*sender.FileSender); ok {
			fs.SetConsole(newLC.Console)
		}
		mainLog := logger.WithComponent("main")
		mainLog.Info().
			Str("level", newLC.Level).
			Bool("console", newLC.Console).
			Msg("Logging configuration updated")
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create logging watcher, hot reload disabled")
		return func() {}
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start logging watcher")
		return func() {}
	}

	return func() {
		if err := w.Stop(); err != nil {
			mainLog := logger.WithComponent("main")
			mainLog.Error().Err(err).Msg("Error stopping logging watcher")
		}
	}
}

func run(ctx context.Context, cfg *config.Config, lc *logger.Config, loggingPath string) error {
	log := logger.WithComponent("main")

	col := collector.New(cfg.Collector)
	announce(ctx, cfg, col)

	snd, err := setupSender(cfg, lc)
	if err != nil {
		return err
	}
	defer closeSender(snd)

	stopWatcher := setupLoggingWatcher(snd, loggingPath)
	defer stopWatcher()

	sched := scheduler.New(col, snd, scheduler.WithConsole(consoleWriter(cfg)))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case <-sched.Done():
	}

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("loop failed: %w", err)
	}
	log.Info().Uint64("published", sched.Cycles()).Msg("Scheduler stopped")
	return nil
}

func runOnce(cfg *config.Config, lc *logger.Config) error {
	ctx := context.Background()
	col := collector.New(cfg.Collector)
	announce(ctx, cfg, col)

	snd, err := setupSender(cfg, lc)
	if err != nil {
		return err
	}
	defer closeSender(snd)

	sched := scheduler.New(col, snd, scheduler.WithConsole(consoleWriter(cfg)))
	err = sched.RunOnce(ctx)
	if errors.Is(err, sender.ErrPublish) {
		return fmt.Errorf("there was an error while publishing the data: %w", err)
	}
	return err
}
