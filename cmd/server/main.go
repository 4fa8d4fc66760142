// Package main runs the scenario lab HTTP server:
// - POST /api/whatif/scenario, GET /api/whatif/ws (scenario engine)
// - GET /api/whatif/config (coach readiness)
// - GET /health, GET /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"networth-scenario-lab/internal/api"
	"networth-scenario-lab/internal/config"
	"networth-scenario-lab/internal/observability"
	"networth-scenario-lab/internal/orchestrator"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env, env vars and CONFIG_FILE
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (config values as defaults)
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	budget := flag.Duration("budget", cfg.RequestBudget, "Wall-clock budget of one scenario request")
	workers := flag.Int("workers", cfg.SimWorkers, "Concurrent trial workers per run (0 = GOMAXPROCS)")
	noCoach := flag.Bool("no-coach", false, "Disable the remote narrative coach")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", cfg.LogFormat, "Log format (json, console)")

	flag.Parse()

	cfg.HTTPAddr = *addr
	cfg.RequestBudget = *budget
	cfg.SimWorkers = *workers
	if *noCoach {
		cfg.Coach.Enabled = false
	}

	// Setup logger
	logger := observability.SetupLogger(os.Stderr, *logLevel, *logFormat).
		With().Str("service", "server").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, cleanup := orchestrator.FromConfig(ctx, cfg, logger)
	defer cleanup()

	server := api.NewServer(api.ServerOptions{
		Addr:   cfg.HTTPAddr,
		Runner: engine,
		Coach: api.CoachInfo{
			Provider: cfg.Coach.Provider,
			Model:    cfg.Coach.Model,
			Ready:    cfg.Coach.Ready(),
		},
		Logger: logger,
	})

	// Channel to signal completion
	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	go func() {
		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-shutdownCtx.Done():
		}
	}()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel()

	logger.Info().Msg("shutdown complete")
}
