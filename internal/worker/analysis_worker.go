// Package worker consumes analysis jobs from AMQP and executes them against
// snapshots held by the storage gateway, writing the result documents back
// through the same gateway.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finsecure/internal/amqp"
	"finsecure/internal/analytics"
	"finsecure/internal/core"
	"finsecure/internal/estimate"
	"finsecure/internal/gateway"
)

const defaultForecastPeriods = 30

// AnalysisWorker runs one analysis task per message. The ledger never rides
// on the queue itself; messages carry a snapshot reference and the worker
// pulls the data through the storage gateway.
type AnalysisWorker struct {
	storage   gateway.Storage
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewAnalysisWorker(storage gateway.Storage, analytics *analytics.Service, logger *slog.Logger) *AnalysisWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisWorker{
		storage:   storage,
		analytics: analytics,
		logger:    logger,
	}
}

// resultEnvelope wraps a finished analysis for storage alongside the job
// identity, so results can be matched to jobs without a separate index.
type resultEnvelope struct {
	JobID       string          `json:"job_id"`
	Task        gateway.Task    `json:"task"`
	SnapshotRef string          `json:"snapshot_ref"`
	CompletedAt time.Time       `json:"completed_at"`
	Result      json.RawMessage `json:"result"`
}

// HandleAnalysisJob processes a single analysis job message from AMQP.
// Returning an error requeues the message, so permanent failures (unknown
// task, missing snapshot, unusable ledger) are logged and dropped instead.
func (w *AnalysisWorker) HandleAnalysisJob(ctx context.Context, msg *amqp.AnalysisJobMessage) error {
	w.logger.InfoContext(ctx, "Processing analysis job",
		"job_id", msg.JobID,
		"task", msg.Task,
		"snapshot_ref", msg.SnapshotRef)

	if !msg.Task.IsValid() {
		w.logger.ErrorContext(ctx, "Dropping job with unknown task",
			"job_id", msg.JobID,
			"task", msg.Task)
		return nil
	}

	content, err := w.storage.Get(ctx, msg.SnapshotRef)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			w.logger.ErrorContext(ctx, "Dropping job for missing snapshot",
				"job_id", msg.JobID,
				"snapshot_ref", msg.SnapshotRef)
			return nil
		}
		return fmt.Errorf("get snapshot from storage: %w", err)
	}

	snapshot, err := core.DecodeSnapshot(content)
	if err != nil {
		w.logger.ErrorContext(ctx, "Dropping job with unreadable snapshot",
			"job_id", msg.JobID,
			"snapshot_ref", msg.SnapshotRef,
			"error", err)
		return nil
	}

	result, err := w.runTask(ctx, msg, snapshot.Transactions)
	if err != nil {
		if errors.Is(err, core.ErrEmptyLedger) || errors.Is(err, estimate.ErrInsufficientData) {
			w.logger.ErrorContext(ctx, "Dropping job with insufficient data",
				"job_id", msg.JobID,
				"task", msg.Task,
				"error", err)
			return nil
		}
		return fmt.Errorf("run %s: %w", msg.Task, err)
	}

	obj, err := w.storeResult(ctx, msg, result)
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	w.logger.InfoContext(ctx, "Completed analysis job",
		"job_id", msg.JobID,
		"task", msg.Task,
		"result_ref", obj.Ref)
	return nil
}

func (w *AnalysisWorker) runTask(ctx context.Context, msg *amqp.AnalysisJobMessage, ledger core.Ledger) (any, error) {
	switch msg.Task {
	case gateway.TaskForecast:
		periods := msg.Periods
		if periods <= 0 {
			periods = defaultForecastPeriods
		}
		return w.analytics.Forecast(ctx, ledger, periods)
	case gateway.TaskAnomalyDetection:
		return w.analytics.Anomalies(ctx, ledger)
	case gateway.TaskClassification:
		return w.analytics.Suggestions(ctx, ledger)
	default:
		return nil, fmt.Errorf("unknown task %q", msg.Task)
	}
}

func (w *AnalysisWorker) storeResult(ctx context.Context, msg *amqp.AnalysisJobMessage, result any) (gateway.StoredObject, error) {
	document, err := json.Marshal(result)
	if err != nil {
		return gateway.StoredObject{}, fmt.Errorf("marshal result: %w", err)
	}

	envelope, err := json.Marshal(resultEnvelope{
		JobID:       msg.JobID,
		Task:        msg.Task,
		SnapshotRef: msg.SnapshotRef,
		CompletedAt: time.Now().UTC(),
		Result:      document,
	})
	if err != nil {
		return gateway.StoredObject{}, fmt.Errorf("marshal envelope: %w", err)
	}

	name := fmt.Sprintf("analysis-%s-%s.json", msg.Task, msg.JobID)
	return w.storage.Put(ctx, name, envelope)
}
