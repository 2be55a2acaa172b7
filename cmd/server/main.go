package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/config"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	manifest := flag.String("manifest", "", "Unit manifest path (overrides UNIT_MANIFEST)")
	dev := flag.Bool("dev", false, "Development mode (colored debug logs)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *manifest != "" {
		cfg.Units.ManifestPath = *manifest
	}
	if *dev {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server: " + err.Error())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("shutting down gracefully")
		if err := srv.Close(); err != nil {
			logger.Warn("error during shutdown: " + err.Error())
		}
	case err := <-errChan:
		logger.Fatal("server error: " + err.Error())
	}
}
