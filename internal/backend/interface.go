package backend

import (
	"context"

	"finsecure/internal/gateway"
)

// CleanupFunc releases resources held by a gateway pair
type CleanupFunc func() error

// Gateways bundles the storage and compute providers selected at startup
type Gateways struct {
	Storage gateway.Storage
	Compute gateway.Compute
	Cleanup CleanupFunc
}

// Factory creates gateway pairs based on configuration
type Factory interface {
	// CreateGateways builds the storage and compute providers the config names
	CreateGateways(ctx context.Context, config Config) (*Gateways, error)
}

// StorageType selects the storage provider
type StorageType string

const (
	SimulatedStorage  StorageType = "simulated"
	LighthouseStorage StorageType = "lighthouse"
	GCSStorage        StorageType = "gcs"
)

func (t StorageType) String() string {
	return string(t)
}

// IsValid returns true if the storage type is known
func (t StorageType) IsValid() bool {
	switch t {
	case SimulatedStorage, LighthouseStorage, GCSStorage:
		return true
	default:
		return false
	}
}

// ComputeType selects the compute provider
type ComputeType string

const (
	SimulatedCompute ComputeType = "simulated"
	LilypadCompute   ComputeType = "lilypad"
)

func (t ComputeType) String() string {
	return string(t)
}

// IsValid returns true if the compute type is known
func (t ComputeType) IsValid() bool {
	switch t {
	case SimulatedCompute, LilypadCompute:
		return true
	default:
		return false
	}
}

// Config holds configuration for gateway creation
type Config struct {
	// Provider selection
	Storage StorageType
	Compute ComputeType

	// Simulated storage
	SQLiteDBPath string

	// Lighthouse
	LighthouseAPIKey     string
	LighthouseBaseURL    string
	LighthouseGatewayURL string

	// Google Cloud Storage
	GCSBucket          string
	GCSCredentialsFile string

	// Lilypad
	LilypadAPIKey  string
	LilypadBaseURL string

	// Local estimators (simulated compute)
	EstimatorSeed int64
}
