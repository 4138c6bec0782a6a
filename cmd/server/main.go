package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/baileyeubanks/coedit/config"
	"github.com/baileyeubanks/coedit/internal/server"
	"github.com/baileyeubanks/coedit/internal/storage"
)

func main() {
	port := flag.String("port", "", "Server port (overrides configuration)")
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	backend, err := storage.New(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to create storage backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Create and start server
	srv, err := server.New(cfg, backend)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	listenPort := cfg.Server.Port
	if *port != "" {
		listenPort = *port
	}

	slog.Info("Starting composition editor API server", "port", listenPort)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
