package http

import (
	"net/http"
	"strings"
	"testing"

	"finsecure/internal/core"
	"finsecure/internal/gateway"
)

func TestForecastEndpoint(t *testing.T) {
	f := newFixture(sampleSeed())

	rec := f.do(t, http.MethodGet, "/api/analysis/forecast?days=14", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	doc := decodeBody[gateway.ForecastDocument](t, rec)
	if len(doc.Forecast.Values) != 14 {
		t.Errorf("forecast length = %d, want 14", len(doc.Forecast.Values))
	}
}

func TestForecastValidatesDays(t *testing.T) {
	f := newFixture(sampleSeed())

	for _, target := range []string{"/api/analysis/forecast?days=0", "/api/analysis/forecast?days=1000"} {
		if rec := f.do(t, http.MethodGet, target, nil, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestForecastEmptyLedger(t *testing.T) {
	f := newFixture(core.Ledger{})

	rec := f.do(t, http.MethodGet, "/api/analysis/forecast", nil, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for an empty ledger", rec.Code)
	}
}

func TestForecastResponseIsCached(t *testing.T) {
	f := newFixture(sampleSeed())

	first := f.do(t, http.MethodGet, "/api/analysis/forecast?days=7", nil, nil)
	second := f.do(t, http.MethodGet, "/api/analysis/forecast?days=7", nil, nil)
	if first.Body.String() != second.Body.String() {
		t.Error("repeated forecast requests returned different bodies")
	}

	// A ledger mutation changes the session revision, so the next request
	// recomputes against the new data instead of serving the stale entry.
	body := `{"date":"2024-06-29","description":"Big purchase","category":"Shopping","amount":-2000}`
	if rec := f.do(t, http.MethodPost, "/api/transactions", strings.NewReader(body), nil); rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", rec.Code)
	}
	third := f.do(t, http.MethodGet, "/api/analysis/forecast?days=7", nil, nil)
	if third.Code != http.StatusOK {
		t.Fatalf("post-mutation status = %d, want 200", third.Code)
	}
	if third.Body.String() == second.Body.String() {
		t.Error("forecast unchanged after a large ledger mutation")
	}
}

func TestAnomaliesEndpoint(t *testing.T) {
	f := newFixture(sampleSeed())

	rec := f.do(t, http.MethodGet, "/api/analysis/anomalies", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	doc := decodeBody[gateway.AnomalyDocument](t, rec)
	if doc.Metadata.Threshold != 2.5 {
		t.Errorf("threshold = %v, want 2.5", doc.Metadata.Threshold)
	}
}

func TestSavingsPlanEndpoint(t *testing.T) {
	f := newFixture(sampleSeed())

	rec := f.do(t, http.MethodGet, "/api/analysis/savings-plan?target=800", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	plan := decodeBody[map[string]any](t, rec)
	if plan["status"] == "" || plan["status"] == nil {
		t.Error("plan has no status")
	}
	if plan["target_savings"] != 800.0 {
		t.Errorf("target_savings = %v, want 800", plan["target_savings"])
	}
}

func TestInsightsEndpoint(t *testing.T) {
	f := newFixture(sampleSeed())

	rec := f.do(t, http.MethodGet, "/api/analysis/insights?days=10&target=600", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	insights := decodeBody[map[string]any](t, rec)
	for _, field := range []string{"forecast", "anomalies", "savings_plan"} {
		if insights[field] == nil {
			t.Errorf("insights missing %q", field)
		}
	}
}

func TestSuggestionsUnavailableWithSimulatedCompute(t *testing.T) {
	f := newFixture(sampleSeed())

	rec := f.do(t, http.MethodGet, "/api/analysis/suggestions", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a classifier", rec.Code)
	}
}

func TestEnqueueAnalysisJob(t *testing.T) {
	f := newFixture(sampleSeed())

	body := `{"task":"time_series_forecast","periods":14}`
	rec := f.do(t, http.MethodPost, "/api/analysis/jobs", strings.NewReader(body), nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[analysisJobResponse](t, rec)
	if resp.JobID == "" || resp.SnapshotRef == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	if len(f.publisher.messages) != 1 {
		t.Fatalf("published messages = %d, want 1", len(f.publisher.messages))
	}
	msg := f.publisher.messages[0]
	if msg.Task != gateway.TaskForecast || msg.Periods != 14 {
		t.Errorf("message = %+v, want forecast with 14 periods", msg)
	}

	// The snapshot referenced by the job must already be readable.
	if _, ok := f.storage.objects[msg.SnapshotRef]; !ok {
		t.Error("snapshot not stored before publishing the job")
	}
}

func TestEnqueueAnalysisJobValidation(t *testing.T) {
	f := newFixture(sampleSeed())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"unknown task", `{"task":"palm_reading"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/analysis/jobs", strings.NewReader(tt.body), nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestEnqueueWithoutPublisher(t *testing.T) {
	f := newFixture(sampleSeed())
	f.server.publisher = nil

	body := `{"task":"time_series_forecast"}`
	rec := f.do(t, http.MethodPost, "/api/analysis/jobs", strings.NewReader(body), nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when AMQP is not configured", rec.Code)
	}
}
