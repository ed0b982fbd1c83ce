package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/console"
	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/di"
	"github.com/mikey/mail-link-monitor/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	monitor ports.Monitor,
	cons *console.Console,
	history core.HistoryRepository,
) error {
	defer logger.Sync()

	if cfg.GetMonitor().Autostart {
		monitor.Start()
	} else {
		logger.Info("autostart disabled, waiting for start command")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The console loop ends on quit or closed stdin; either way the
	// daemon shuts down.
	consoleDone := make(chan error, 1)
	if cfg.GetBool("console.enabled") {
		go func() {
			consoleDone <- cons.Run(ctx)
		}()
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-consoleDone:
		if err != nil && err != context.Canceled {
			logger.Error("console loop failed", zap.Error(err))
		}
		logger.Info("console closed, shutting down")
	}
	cancel()

	// Stop the monitor and wait for the worker to reach idle
	monitor.Stop()

	// Stop the history journal if it runs background work
	if stopper, ok := history.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("shutdown complete")
	return nil
}
