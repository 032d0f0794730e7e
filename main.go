package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"oilfx/internal/config"
	"oilfx/internal/dashboard"
	"oilfx/internal/logger"
	"oilfx/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, closer, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer closer.Close()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error().Err(err).Msg("oilfx failed")
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	sources, err := buildSources(cfg, lg)
	if err != nil {
		return err
	}
	j, err := newJob(cfg, sources, lg)
	if err != nil {
		return err
	}

	if cfg.RefreshCron == "" {
		snap, err := j.Refresh(ctx)
		if err != nil {
			return err
		}
		return writeSnapshot(cfg.Output, snap)
	}

	sched := scheduler.New(ctx, j, lg)
	sched.OnUpdate = func(snap *dashboard.Snapshot) {
		if err := writeSnapshot(cfg.Output, snap); err != nil {
			lg.Error().Err(err).Msg("could not write snapshot")
		}
	}
	if err := sched.Register(cfg.RefreshCron); err != nil {
		return err
	}

	// First snapshot right away; later ones follow the schedule.
	if err := sched.RunNow(); err != nil {
		lg.Error().Err(err).Msg("initial refresh failed")
	}
	sched.Start()
	lg.Info().Str("schedule", cfg.RefreshCron).Msg("refreshing until interrupted")

	<-ctx.Done()
	sched.Stop()
	return nil
}
