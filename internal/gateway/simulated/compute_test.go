package simulated

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsecure/internal/anonymize"
	"finsecure/internal/estimate"
	"finsecure/internal/gateway"
)

func testPayload() *anonymize.Payload {
	return &anonymize.Payload{
		Features: []anonymize.FeatureRow{
			{Amount: -50, Month: 1, DaysSinceFirst: 0},
			{Amount: -70, Month: 1, DaysSinceFirst: 1},
			{Amount: 2500, Month: 1, DaysSinceFirst: 2},
		},
		Dates:           []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		CategoryMapping: map[string]int{"Food": 0},
	}
}

func TestSubmitForecastJob(t *testing.T) {
	c := NewCompute(estimate.NewDefault(), nil)
	ctx := context.Background()

	jobID, err := c.Submit(ctx, gateway.Request{
		Task:   gateway.TaskForecast,
		Data:   testPayload(),
		Params: gateway.Params{ForecastPeriods: 14},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if jobID == "" {
		t.Fatal("Submit() returned empty job id")
	}

	status, err := c.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status != gateway.JobCompleted {
		t.Fatalf("status = %q, want completed", status)
	}

	result, err := gateway.AwaitResult(ctx, c, jobID, time.Millisecond, 3)
	if err != nil {
		t.Fatalf("AwaitResult() error = %v", err)
	}
	if result.ProofVerified {
		t.Error("simulated result claims a verified proof")
	}

	doc, err := gateway.DecodeForecast(result)
	if err != nil {
		t.Fatalf("decoding forecast: %v", err)
	}
	if len(doc.Forecast.Values) != 14 {
		t.Errorf("forecast length = %d, want 14", len(doc.Forecast.Values))
	}
	if doc.Metadata.Confidence != 0.6 {
		t.Errorf("confidence = %v, want the local estimator's 0.6", doc.Metadata.Confidence)
	}
}

func TestSubmitAnomalyJob(t *testing.T) {
	c := NewCompute(estimate.NewDefault(), nil)

	jobID, err := c.Submit(context.Background(), gateway.Request{
		Task: gateway.TaskAnomalyDetection,
		Data: testPayload(),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	result, err := c.Result(context.Background(), jobID)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	doc, err := gateway.DecodeAnomalies(result)
	if err != nil {
		t.Fatalf("decoding anomalies: %v", err)
	}
	if doc.Metadata.Threshold != 2.5 {
		t.Errorf("threshold = %v, want 2.5", doc.Metadata.Threshold)
	}
}

func TestSubmitClassificationUnavailable(t *testing.T) {
	c := NewCompute(estimate.NewDefault(), nil)

	_, err := c.Submit(context.Background(), gateway.Request{
		Task: gateway.TaskClassification,
		Data: testPayload(),
	})
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable for classification", err)
	}
}

func TestUnknownJob(t *testing.T) {
	c := NewCompute(estimate.NewDefault(), nil)

	if _, err := c.Status(context.Background(), "nope"); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("Status error = %v, want ErrNotFound", err)
	}
	if _, err := c.Result(context.Background(), "nope"); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("Result error = %v, want ErrNotFound", err)
	}
}

func TestSubmitEmptyPayload(t *testing.T) {
	c := NewCompute(estimate.NewDefault(), nil)

	_, err := c.Submit(context.Background(), gateway.Request{
		Task: gateway.TaskForecast,
		Data: &anonymize.Payload{},
	})
	if !errors.Is(err, estimate.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}
