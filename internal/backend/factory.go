package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finsecure/internal/estimate"
	"finsecure/internal/gateway"
	"finsecure/internal/gateway/gcs"
	"finsecure/internal/gateway/lighthouse"
	"finsecure/internal/gateway/lilypad"
	"finsecure/internal/gateway/simulated"
	"finsecure/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new gateway factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateGateways implements Factory.CreateGateways. Provider selection
// happens here, once; the rest of the application never checks which
// variant it got.
func (f *DefaultFactory) CreateGateways(ctx context.Context, config Config) (*Gateways, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, cleanup, err := f.createStorage(ctx, config)
	if err != nil {
		return nil, err
	}

	compute, err := f.createCompute(ctx, config)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, err
	}

	if cleanup == nil {
		cleanup = func() error { return nil }
	}

	f.logger.Info("Initialized gateways",
		"storage", config.Storage.String(),
		"compute", config.Compute.String())

	return &Gateways{
		Storage: store,
		Compute: compute,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createStorage(ctx context.Context, config Config) (gateway.Storage, CleanupFunc, error) {
	switch config.Storage {
	case SimulatedStorage:
		repo, err := storage.NewSnapshotRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize snapshot repository: %w", err)
		}
		f.logger.Info("Initialized simulated storage", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case LighthouseStorage:
		client, err := lighthouse.NewClient(lighthouse.Config{
			APIKey:     config.LighthouseAPIKey,
			BaseURL:    config.LighthouseBaseURL,
			GatewayURL: config.LighthouseGatewayURL,
		}, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize lighthouse client: %w", err)
		}
		f.logger.Info("Initialized Lighthouse storage")
		return client, nil, nil

	case GCSStorage:
		store, err := gcs.NewStore(ctx, config.GCSBucket, config.GCSCredentialsFile, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize GCS store: %w", err)
		}
		f.logger.Info("Initialized GCS storage", "bucket", config.GCSBucket)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", config.Storage)
	}
}

func (f *DefaultFactory) createCompute(ctx context.Context, config Config) (gateway.Compute, error) {
	switch config.Compute {
	case SimulatedCompute:
		compute := simulated.NewCompute(estimate.New(config.EstimatorSeed), f.logger)
		compute.StartSweeper(ctx)
		f.logger.Info("Initialized simulated compute", "seed", config.EstimatorSeed)
		return compute, nil

	case LilypadCompute:
		client, err := lilypad.NewClient(lilypad.Config{
			APIKey:  config.LilypadAPIKey,
			BaseURL: config.LilypadBaseURL,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize lilypad client: %w", err)
		}
		f.logger.Info("Initialized Lilypad compute")
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported compute type: %s", config.Compute)
	}
}
