// Package simulated implements the compute gateway with the local
// estimators. Jobs complete synchronously on submit; results live in a
// TTL-bounded store so the polling surface behaves like a remote provider's.
package simulated

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finsecure/internal/cache"
	"finsecure/internal/estimate"
	"finsecure/internal/gateway"
)

const (
	jobStoreSize = 256
	jobTTL       = 30 * time.Minute

	modelName = "local_estimator"
)

type Compute struct {
	estimator *estimate.Estimator
	jobs      *cache.LRUCache[gateway.JobResult]
	logger    *slog.Logger
}

func NewCompute(estimator *estimate.Estimator, logger *slog.Logger) *Compute {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compute{
		estimator: estimator,
		jobs:      cache.NewLRU[gateway.JobResult](jobStoreSize, jobTTL),
		logger:    logger,
	}
}

// StartSweeper ages out finished jobs in the background until ctx is
// cancelled.
func (c *Compute) StartSweeper(ctx context.Context) {
	go c.jobs.Sweep(ctx, jobTTL/2)
}

// Submit runs the task immediately and stores the finished result under a
// fresh job id. Classification has no local model, so it is refused as
// unavailable rather than answered with made-up categories.
func (c *Compute) Submit(ctx context.Context, req gateway.Request) (string, error) {
	if !req.Task.IsValid() {
		return "", fmt.Errorf("submit: unknown task %q", req.Task)
	}

	var doc any
	switch req.Task {
	case gateway.TaskForecast:
		periods := req.Params.ForecastPeriods
		if periods <= 0 {
			periods = 30
		}
		forecast, err := c.estimator.Forecast(req.Data, periods)
		if err != nil {
			return "", fmt.Errorf("submit %s: %w", req.Task, err)
		}
		doc = gateway.ForecastDocument{
			Forecast: gateway.ForecastSeries{Dates: forecast.Dates, Values: forecast.Values},
			Metadata: gateway.Metadata{
				Model:      modelName,
				Confidence: forecast.Confidence,
				Baseline:   forecast.Baseline,
			},
		}
	case gateway.TaskAnomalyDetection:
		anomalies, err := c.estimator.DetectAnomalies(req.Data)
		if err != nil {
			return "", fmt.Errorf("submit %s: %w", req.Task, err)
		}
		doc = gateway.AnomalyDocument{
			Anomalies: anomalies,
			Metadata:  gateway.Metadata{Model: modelName, Threshold: 2.5},
		}
	case gateway.TaskClassification:
		return "", fmt.Errorf("submit: classification needs a remote provider: %w", gateway.ErrUnavailable)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("submit %s: encode result: %w", req.Task, err)
	}

	jobID := uuid.New().String()
	c.jobs.Set(jobID, gateway.JobResult{Data: data})

	c.logger.InfoContext(ctx, "Simulated compute job finished",
		"job_id", jobID,
		"task", req.Task.String(),
		"rows", len(req.Data.Features))
	return jobID, nil
}

func (c *Compute) Status(ctx context.Context, jobID string) (gateway.JobStatus, error) {
	if _, ok := c.jobs.Get(jobID); !ok {
		return "", fmt.Errorf("job %s: %w", jobID, gateway.ErrNotFound)
	}
	return gateway.JobCompleted, nil
}

func (c *Compute) Result(ctx context.Context, jobID string) (gateway.JobResult, error) {
	result, ok := c.jobs.Get(jobID)
	if !ok {
		return gateway.JobResult{}, fmt.Errorf("job %s: %w", jobID, gateway.ErrNotFound)
	}
	return result, nil
}
