package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsecure/internal/amqp"
	"finsecure/internal/analytics"
	"finsecure/internal/backend"
	"finsecure/internal/config"
	"finsecure/internal/core"
	"finsecure/internal/estimate"
	apphttp "finsecure/internal/http"
	"finsecure/internal/session"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to build backend configuration", "error", err)
		os.Exit(1)
	}
	gateways, err := backend.NewFactory(logger).CreateGateways(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize gateways", "error", err)
		os.Exit(1)
	}
	defer gateways.Cleanup()

	svc := analytics.NewService(
		gateways.Compute,
		estimate.New(cfg.EstimatorSeed),
		cfg.PollInterval,
		cfg.PollMaxAttempts,
		logger,
	)

	var seed core.Ledger
	if cfg.SeedSampleData {
		seed = core.GenerateSample(cfg.EstimatorSeed, core.DateOf(time.Now()))
		logger.Info("Seeded sample ledger", "transactions", len(seed))
	}
	sessions := session.NewManager(seed)

	// AMQP is optional; without it the async analysis endpoint answers 503.
	var publisher apphttp.JobPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, sessions, svc, gateways.Storage, publisher)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finsecure server",
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"compute_backend", cfg.ComputeBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
