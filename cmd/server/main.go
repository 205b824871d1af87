package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vendbees/ventory/internal/config"
	"github.com/vendbees/ventory/internal/core"
	_ "github.com/vendbees/ventory/internal/core/tables" // Register all tables
	"github.com/vendbees/ventory/internal/logging"
	"github.com/vendbees/ventory/internal/source"
	"github.com/vendbees/ventory/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source_type", cfg.Source.Type,
		"poll_interval", cfg.Sync.PollInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Select the persistence backend
	var backend core.Backend
	if strings.EqualFold(cfg.Source.Type, "remote") {
		backend = source.NewRemote(cfg.Source.RemoteURL, cfg.Source.RemoteToken)
		slog.Info("using remote document store", "url", cfg.Source.RemoteURL)
	} else {
		backend = source.NewWorkbook(cfg.Source.Path)
		slog.Info("using local workbook", "path", cfg.Source.Path)
	}

	service := core.NewService(backend, core.Options{
		PollInterval:      cfg.Sync.PollInterval,
		DefaultRefillerID: cfg.Mutation.DefaultRefillerID,
	})

	slog.Info("tables registered", "count", core.TableCount())

	// Create server with config
	server := web.NewServer(service, cfg)

	// Start the background sync loop (first cycle runs immediately)
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSync(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
