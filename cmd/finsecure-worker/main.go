package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsecure/internal/amqp"
	"finsecure/internal/analytics"
	"finsecure/internal/backend"
	"finsecure/internal/config"
	"finsecure/internal/estimate"
	"finsecure/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting finsecure-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
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

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	svc := analytics.NewService(
		gateways.Compute,
		estimate.New(cfg.EstimatorSeed),
		cfg.PollInterval,
		cfg.PollMaxAttempts,
		logger,
	)
	analysisWorker := worker.NewAnalysisWorker(gateways.Storage, svc, logger)

	go func() {
		if err := amqpClient.ConsumeAnalysisJobs(ctx, func(msg *amqp.AnalysisJobMessage) error {
			return analysisWorker.HandleAnalysisJob(ctx, msg)
		}); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight jobs a moment to finish before the process exits.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
