package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hostfleet/csvimport/internal/config"
	"github.com/hostfleet/csvimport/internal/core"
	"github.com/hostfleet/csvimport/internal/inventory"
	"github.com/hostfleet/csvimport/internal/logging"
	"github.com/hostfleet/csvimport/internal/web"
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
		"inventory_url", cfg.Inventory.URL,
		"separator", cfg.Import.Separator,
		"max_line_length", cfg.Import.MaxLineLength,
	)

	inv := inventory.NewClient(cfg.Inventory.URL, cfg.Inventory.Token, cfg.Inventory.Timeout)

	service := core.NewService(inv, core.Options{
		TmpDir:            cfg.Upload.TmpDir,
		MaxFileSize:       cfg.Upload.MaxFileSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		Separator:         cfg.Import.SeparatorByte(),
		MaxLineLen:        cfg.Import.MaxLineLength,
	}, slog.Default())

	server := web.NewServer(service, cfg)

	// Background cleanup of expired sessions and their temp files
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartJanitor(jobCtx, 10*time.Minute)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
