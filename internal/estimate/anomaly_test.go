package estimate

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"finsecure/internal/anonymize"
)

// outlierPayload builds k identical expenses followed by one outlier. With
// this shape the outlier's z-score is exactly k/sqrt(k+1).
func outlierPayload(k int, base, outlier float64) *anonymize.Payload {
	p := &anonymize.Payload{CategoryMapping: map[string]int{"Shopping": 0}}
	for i := 0; i < k; i++ {
		p.Features = append(p.Features, anonymize.FeatureRow{Amount: -base, DaysSinceFirst: i})
		p.Dates = append(p.Dates, fmt.Sprintf("2024-01-%02d", i+1))
	}
	p.Features = append(p.Features, anonymize.FeatureRow{Amount: -outlier, DaysSinceFirst: k})
	p.Dates = append(p.Dates, fmt.Sprintf("2024-01-%02d", k+1))
	return p
}

func TestDetectAnomaliesMediumSeverity(t *testing.T) {
	// k=8 gives z = 8/3 ~ 2.667: flagged, below the high cutoff.
	got, err := NewDefault().DetectAnomalies(outlierPayload(8, 50, 900))
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(got))
	}
	a := got[0]
	if a.Date != "2024-01-09" || a.Amount != -900 {
		t.Errorf("anomaly = %+v, want the outlier row with negative sign", a)
	}
	if !almostEqual(a.ZScore, 8.0/3.0) {
		t.Errorf("z-score = %v, want %v", a.ZScore, 8.0/3.0)
	}
	if a.Severity != SeverityMedium {
		t.Errorf("severity = %q, want %q", a.Severity, SeverityMedium)
	}
}

func TestDetectAnomaliesHighSeverity(t *testing.T) {
	// k=15 gives z = 15/4 = 3.75: above the high cutoff.
	got, err := NewDefault().DetectAnomalies(outlierPayload(15, 50, 2000))
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(got))
	}
	if !almostEqual(got[0].ZScore, 3.75) {
		t.Errorf("z-score = %v, want 3.75", got[0].ZScore)
	}
	if got[0].Severity != SeverityHigh {
		t.Errorf("severity = %q, want %q", got[0].Severity, SeverityHigh)
	}
}

func TestDetectAnomaliesBelowThreshold(t *testing.T) {
	// k=7 gives z = 7/sqrt(8) ~ 2.475: not flagged.
	got, err := NewDefault().DetectAnomalies(outlierPayload(7, 50, 900))
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d anomalies, want none below threshold", len(got))
	}
}

func TestAnomalyThresholdIsStrict(t *testing.T) {
	tests := []struct {
		z    float64
		want bool
	}{
		{2.5, false},
		{math.Nextafter(2.5, 3), true},
		{2.499, false},
		{4, true},
	}
	for _, tt := range tests {
		if got := isAnomalous(tt.z); got != tt.want {
			t.Errorf("isAnomalous(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}

func TestAnomalySeverityBoundary(t *testing.T) {
	if got := anomalySeverity(3.5); got != SeverityMedium {
		t.Errorf("anomalySeverity(3.5) = %q, want medium at the boundary", got)
	}
	if got := anomalySeverity(math.Nextafter(3.5, 4)); got != SeverityHigh {
		t.Errorf("anomalySeverity(3.5+) = %q, want high", got)
	}
}

func TestDetectAnomaliesDegenerateSpread(t *testing.T) {
	// All expenses equal: std floors at 1.0, z-scores are 0, nothing flagged.
	p := outlierPayload(5, 50, 50)
	got, err := NewDefault().DetectAnomalies(p)
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d anomalies from equal expenses, want 0", len(got))
	}

	// A single expense has no sample deviation either.
	single := &anonymize.Payload{
		Features: []anonymize.FeatureRow{{Amount: -100}},
		Dates:    []string{"2024-01-01"},
	}
	got, err = NewDefault().DetectAnomalies(single)
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d anomalies from a single expense, want 0", len(got))
	}
}

func TestDetectAnomaliesNoExpenses(t *testing.T) {
	p := &anonymize.Payload{
		Features: []anonymize.FeatureRow{{Amount: 3000}},
		Dates:    []string{"2024-01-01"},
	}
	got, err := NewDefault().DetectAnomalies(p)
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestDetectAnomaliesEmptyPayload(t *testing.T) {
	_, err := NewDefault().DetectAnomalies(&anonymize.Payload{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestDetectAnomaliesPreservesInputOrder(t *testing.T) {
	// Two outliers among many small expenses; flags come back in input order.
	p := &anonymize.Payload{}
	amounts := make([]float64, 0, 22)
	amounts = append(amounts, -3000)
	for i := 0; i < 20; i++ {
		amounts = append(amounts, -50)
	}
	amounts = append(amounts, -3000)
	for i, a := range amounts {
		p.Features = append(p.Features, anonymize.FeatureRow{Amount: a})
		p.Dates = append(p.Dates, fmt.Sprintf("2024-02-%02d", i+1))
	}

	got, err := NewDefault().DetectAnomalies(p)
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d anomalies, want 2", len(got))
	}
	if got[0].Date != "2024-02-01" || got[1].Date != "2024-02-22" {
		t.Errorf("dates = %q, %q; want input order", got[0].Date, got[1].Date)
	}
}
