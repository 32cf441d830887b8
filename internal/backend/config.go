package backend

import (
	"fmt"

	"finsecure/internal/config"
)

// FromAppConfig converts the application config to gateway config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Storage: StorageType(appConfig.StorageBackend),
		Compute: ComputeType(appConfig.ComputeBackend),

		SQLiteDBPath: appConfig.SQLiteDBPath,

		LighthouseAPIKey:     appConfig.LighthouseAPIKey,
		LighthouseBaseURL:    appConfig.LighthouseBaseURL,
		LighthouseGatewayURL: appConfig.LighthouseGatewayURL,

		GCSBucket:          appConfig.GCSBucket,
		GCSCredentialsFile: appConfig.GCSCredentialsFile,

		LilypadAPIKey:  appConfig.LilypadAPIKey,
		LilypadBaseURL: appConfig.LilypadBaseURL,

		EstimatorSeed: appConfig.EstimatorSeed,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the gateway configuration
func (c Config) Validate() error {
	if !c.Storage.IsValid() {
		return fmt.Errorf("invalid storage type: %s", c.Storage)
	}
	if !c.Compute.IsValid() {
		return fmt.Errorf("invalid compute type: %s", c.Compute)
	}

	switch c.Storage {
	case SimulatedStorage:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for simulated storage")
		}
	case LighthouseStorage:
		if c.LighthouseAPIKey == "" {
			return fmt.Errorf("Lighthouse API key is required for lighthouse storage")
		}
	case GCSStorage:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS bucket is required for gcs storage")
		}
	}

	if c.Compute == LilypadCompute && c.LilypadAPIKey == "" {
		return fmt.Errorf("Lilypad API key is required for lilypad compute")
	}

	return nil
}
