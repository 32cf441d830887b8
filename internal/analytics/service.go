// Package analytics orchestrates the privacy pipeline: ledgers are
// anonymized and feature-encoded, handed to the computation gateway, and the
// decoded documents returned to the caller. When the gateway cannot serve a
// task the service degrades to the local estimators and says so in the logs,
// never in the API.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finsecure/internal/anonymize"
	"finsecure/internal/core"
	"finsecure/internal/estimate"
	"finsecure/internal/gateway"
)

const localModel = "local_estimator"

type Service struct {
	compute         gateway.Compute
	estimator       *estimate.Estimator
	pollInterval    time.Duration
	pollMaxAttempts int
	logger          *slog.Logger
}

func NewService(compute gateway.Compute, estimator *estimate.Estimator, pollInterval time.Duration, pollMaxAttempts int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		compute:         compute,
		estimator:       estimator,
		pollInterval:    pollInterval,
		pollMaxAttempts: pollMaxAttempts,
		logger:          logger,
	}
}

// Forecast projects daily spending. The gateway result is preferred; on
// gateway failure the local estimator answers with its lower confidence.
func (s *Service) Forecast(ctx context.Context, ledger core.Ledger, periods int) (*gateway.ForecastDocument, error) {
	payload, err := anonymize.Prepare(ledger)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, gateway.Request{
		Task:   gateway.TaskForecast,
		Data:   payload,
		Params: gateway.Params{ForecastPeriods: periods},
	})
	if err == nil {
		if doc, decodeErr := gateway.DecodeForecast(result); decodeErr == nil {
			return doc, nil
		} else {
			err = decodeErr
		}
	}
	if errors.Is(err, estimate.ErrInsufficientData) {
		return nil, err
	}

	s.logger.WarnContext(ctx, "Compute gateway failed, using local forecast", "error", err)
	forecast, err := s.estimator.Forecast(payload, periods)
	if err != nil {
		return nil, err
	}
	return &gateway.ForecastDocument{
		Forecast: gateway.ForecastSeries{Dates: forecast.Dates, Values: forecast.Values},
		Metadata: gateway.Metadata{
			Model:      localModel,
			Confidence: forecast.Confidence,
			Baseline:   forecast.Baseline,
		},
	}, nil
}

// Anomalies flags outlier expenses, falling back to local scoring when the
// gateway cannot answer.
func (s *Service) Anomalies(ctx context.Context, ledger core.Ledger) (*gateway.AnomalyDocument, error) {
	payload, err := anonymize.Prepare(ledger)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, gateway.Request{
		Task: gateway.TaskAnomalyDetection,
		Data: payload,
	})
	if err == nil {
		if doc, decodeErr := gateway.DecodeAnomalies(result); decodeErr == nil {
			return doc, nil
		} else {
			err = decodeErr
		}
	}
	if errors.Is(err, estimate.ErrInsufficientData) {
		return nil, err
	}

	s.logger.WarnContext(ctx, "Compute gateway failed, using local anomaly detection", "error", err)
	anomalies, err := s.estimator.DetectAnomalies(payload)
	if err != nil {
		return nil, err
	}
	return &gateway.AnomalyDocument{
		Anomalies: anomalies,
		Metadata:  gateway.Metadata{Model: localModel, Threshold: 2.5},
	}, nil
}

// SavingsPlan always runs locally; the plan needs no model, just the
// anonymized aggregates.
func (s *Service) SavingsPlan(ctx context.Context, ledger core.Ledger, targetSavings float64) (*estimate.SavingsPlan, error) {
	payload, err := anonymize.Prepare(ledger)
	if err != nil {
		return nil, err
	}
	return s.estimator.PlanSavings(payload, targetSavings)
}

// Suggestions asks the gateway to classify uncategorized transactions. There
// is no local fallback model, so gateway failure surfaces to the caller.
func (s *Service) Suggestions(ctx context.Context, ledger core.Ledger) (*gateway.ClassificationDocument, error) {
	payload, err := anonymize.Prepare(ledger)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, gateway.Request{
		Task: gateway.TaskClassification,
		Data: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("classify transactions: %w", err)
	}
	return gateway.DecodeClassification(result)
}

// Insights bundles the three analyses for the dashboard, running them
// concurrently.
type Insights struct {
	Forecast    *gateway.ForecastDocument `json:"forecast"`
	Anomalies   *gateway.AnomalyDocument  `json:"anomalies"`
	SavingsPlan *estimate.SavingsPlan     `json:"savings_plan"`
}

func (s *Service) Insights(ctx context.Context, ledger core.Ledger, periods int, targetSavings float64) (*Insights, error) {
	insights := &Insights{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.Forecast(ctx, ledger, periods)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		insights.Forecast = doc
		return nil
	})
	g.Go(func() error {
		doc, err := s.Anomalies(ctx, ledger)
		if err != nil {
			return fmt.Errorf("anomalies: %w", err)
		}
		insights.Anomalies = doc
		return nil
	})
	g.Go(func() error {
		plan, err := s.SavingsPlan(ctx, ledger, targetSavings)
		if err != nil {
			return fmt.Errorf("savings plan: %w", err)
		}
		insights.SavingsPlan = plan
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return insights, nil
}

// run submits a request and waits for its result within the poll budget.
func (s *Service) run(ctx context.Context, req gateway.Request) (gateway.JobResult, error) {
	jobID, err := s.compute.Submit(ctx, req)
	if err != nil {
		return gateway.JobResult{}, err
	}
	return gateway.AwaitResult(ctx, s.compute, jobID, s.pollInterval, s.pollMaxAttempts)
}
