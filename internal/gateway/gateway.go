// Package gateway defines the capability ports for external storage and
// computation providers. Implementations live in subpackages; the backend
// factory picks one of each at startup and the rest of the application only
// sees these interfaces.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"finsecure/internal/anonymize"
)

var (
	// ErrUnavailable signals that a remote provider could not serve the
	// request (network failure, exhausted poll budget, rejected job).
	// Callers fall back to local estimation on it.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrNotFound is returned for unknown snapshot references and job ids.
	ErrNotFound = errors.New("not found")
)

// Task identifies an analysis a compute gateway can run.
type Task string

const (
	TaskForecast         Task = "time_series_forecast"
	TaskAnomalyDetection Task = "anomaly_detection"
	TaskClassification   Task = "classification"
)

func (t Task) String() string { return string(t) }

func (t Task) IsValid() bool {
	switch t {
	case TaskForecast, TaskAnomalyDetection, TaskClassification:
		return true
	default:
		return false
	}
}

// Params carries the per-task knobs alongside the anonymized data.
type Params struct {
	ForecastPeriods int     `json:"forecast_periods,omitempty"`
	TargetSavings   float64 `json:"target_savings,omitempty"`
}

// Request is a unit of work submitted to a compute gateway. Data is always
// the anonymized feature payload; raw ledger rows never cross this boundary.
type Request struct {
	Task   Task               `json:"task"`
	Data   *anonymize.Payload `json:"data"`
	Params Params             `json:"parameters"`
}

// JobStatus is the lifecycle state of a submitted job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Done reports whether the job has reached a terminal state.
func (s JobStatus) Done() bool {
	return s == JobCompleted || s == JobFailed
}

// JobResult is the raw outcome of a completed job. Data is the task-specific
// JSON document; ProofVerified reports whether the provider attached a valid
// computation proof (always false for local simulation).
type JobResult struct {
	Data          json.RawMessage `json:"data"`
	ProofVerified bool            `json:"proof_verified"`
}

// StoredObject describes one snapshot held by a storage gateway. Ref is an
// opaque capability token; callers never parse it.
type StoredObject struct {
	Ref       string    `json:"ref"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// Storage stores and retrieves opaque snapshot blobs.
type Storage interface {
	Put(ctx context.Context, name string, data []byte) (StoredObject, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	List(ctx context.Context) ([]StoredObject, error)
}

// Compute runs analysis jobs asynchronously: submit, poll, fetch.
type Compute interface {
	Submit(ctx context.Context, req Request) (string, error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
	Result(ctx context.Context, jobID string) (JobResult, error)
}
