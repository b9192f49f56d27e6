package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banking-ledger/internal/config"
	"banking-ledger/internal/server"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration; CONFIG_FILE points at an optional YAML file, with
	// environment variables applied on top either way.
	var cfg *config.Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			slog.Error("Failed to load config file", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}

	serverInstance, port, err := server.StartServer(cfg)
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("Server started successfully", "port", port)

	// Wait for shutdown signal
	stop, cancelSignal := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelSignal()
	<-stop.Done()

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := serverInstance.Stop(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
