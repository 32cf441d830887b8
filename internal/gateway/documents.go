package gateway

import (
	"encoding/json"
	"fmt"

	"finsecure/internal/estimate"
)

// Result documents share one shape across providers: the simulated gateway
// emits them directly and the remote clients return the provider's JSON
// as-is, so callers decode JobResult.Data the same way either side.

type Metadata struct {
	Model      string  `json:"model"`
	Confidence float64 `json:"confidence,omitempty"`
	Baseline   float64 `json:"baseline,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`
}

type ForecastSeries struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

type ForecastDocument struct {
	Forecast ForecastSeries `json:"forecast"`
	Metadata Metadata       `json:"metadata"`
}

type AnomalyDocument struct {
	Anomalies []estimate.Anomaly `json:"anomalies"`
	Metadata  Metadata           `json:"metadata"`
}

// CategorySuggestion is one classification result row.
type CategorySuggestion struct {
	TransactionID     string  `json:"transaction_id"`
	Description       string  `json:"description"`
	SuggestedCategory string  `json:"suggested_category"`
	Confidence        float64 `json:"confidence"`
}

type ClassificationDocument struct {
	Categories []CategorySuggestion `json:"categories"`
	Metadata   Metadata             `json:"metadata"`
}

func DecodeForecast(r JobResult) (*ForecastDocument, error) {
	var doc ForecastDocument
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode forecast document: %w", err)
	}
	return &doc, nil
}

func DecodeAnomalies(r JobResult) (*AnomalyDocument, error) {
	var doc AnomalyDocument
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode anomaly document: %w", err)
	}
	return &doc, nil
}

func DecodeClassification(r JobResult) (*ClassificationDocument, error) {
	var doc ClassificationDocument
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode classification document: %w", err)
	}
	return &doc, nil
}
