package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finsecure/internal/gateway"
)

// AnalysisJobMessage asks the worker to run one analysis task against a
// stored ledger snapshot. It carries only the snapshot reference; the worker
// fetches the actual data through the storage gateway.
type AnalysisJobMessage struct {
	JobID         string       `json:"job_id"`
	Task          gateway.Task `json:"task"`
	SnapshotRef   string       `json:"snapshot_ref"`
	Periods       int          `json:"periods,omitempty"`
	TargetSavings float64      `json:"target_savings,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// NewAnalysisJobMessage creates a job message with a fresh job id
func NewAnalysisJobMessage(task gateway.Task, snapshotRef string) *AnalysisJobMessage {
	return &AnalysisJobMessage{
		JobID:       uuid.New().String(),
		Task:        task,
		SnapshotRef: snapshotRef,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AnalysisJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AnalysisJobMessageFromJSON creates a message from JSON bytes
func AnalysisJobMessageFromJSON(data []byte) (*AnalysisJobMessage, error) {
	var msg AnalysisJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
