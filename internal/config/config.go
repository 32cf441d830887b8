package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Gateway selection
	StorageBackend string
	ComputeBackend string

	// Simulated storage (sqlite)
	SQLiteDBPath string

	// Lighthouse storage
	LighthouseAPIKey     string
	LighthouseBaseURL    string
	LighthouseGatewayURL string

	// Google Cloud Storage
	GCSBucket          string
	GCSCredentialsFile string

	// Lilypad compute
	LilypadAPIKey  string
	LilypadBaseURL string

	// Remote job polling
	PollInterval    time.Duration
	PollMaxAttempts int

	// AMQP (async analysis jobs)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Estimators
	EstimatorSeed int64

	// Sessions
	SeedSampleData bool
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		StorageBackend: getEnv("STORAGE_BACKEND", "simulated"),
		ComputeBackend: getEnv("COMPUTE_BACKEND", "simulated"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsecure.db"),

		LighthouseAPIKey:     getEnv("LIGHTHOUSE_API_KEY", ""),
		LighthouseBaseURL:    getEnv("LIGHTHOUSE_BASE_URL", ""),
		LighthouseGatewayURL: getEnv("LIGHTHOUSE_GATEWAY_URL", ""),

		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		LilypadAPIKey:  getEnv("LILYPAD_API_KEY", ""),
		LilypadBaseURL: getEnv("LILYPAD_BASE_URL", ""),

		PollInterval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),
		PollMaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 30),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsecure"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "analysis_jobs"),

		EstimatorSeed: int64(getEnvInt("ESTIMATOR_SEED", 42)),

		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", true),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate storage backend selection
	validStorage := []string{"simulated", "lighthouse", "gcs"}
	if !contains(validStorage, c.StorageBackend) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validStorage))
	}

	validCompute := []string{"simulated", "lilypad"}
	if !contains(validCompute, c.ComputeBackend) {
		errors = append(errors, fmt.Sprintf("invalid compute backend '%s': must be one of %v", c.ComputeBackend, validCompute))
	}

	// Validate simulated storage configuration
	if c.StorageBackend == "simulated" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using simulated storage")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Remote providers need their credentials up front; a missing key must
	// fail startup, not the first upload.
	if c.StorageBackend == "lighthouse" && c.LighthouseAPIKey == "" {
		errors = append(errors, "LIGHTHOUSE_API_KEY is required when using lighthouse storage")
	}
	if c.StorageBackend == "gcs" && c.GCSBucket == "" {
		errors = append(errors, "GCS_BUCKET is required when using gcs storage")
	}
	if c.ComputeBackend == "lilypad" && c.LilypadAPIKey == "" {
		errors = append(errors, "LILYPAD_API_KEY is required when using lilypad compute")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate polling budget
	if c.PollInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid poll interval %v: must be at least 100ms", c.PollInterval))
	} else if c.PollInterval > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid poll interval %v: must be at most 1 minute", c.PollInterval))
	}

	if c.PollMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid poll max attempts %d: must be at least 1", c.PollMaxAttempts))
	} else if c.PollMaxAttempts > 1000 {
		errors = append(errors, fmt.Sprintf("invalid poll max attempts %d: must be at most 1000", c.PollMaxAttempts))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
