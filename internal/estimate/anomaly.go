package estimate

import (
	"fmt"
	"math"

	"finsecure/internal/anonymize"
)

const (
	anomalyThreshold = 2.5
	highSeverityZ    = 3.5

	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly is a single flagged expense. Amount keeps the ledger's sign
// convention (negative for expenses).
type Anomaly struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"`
}

// DetectAnomalies flags expenses whose magnitude is an outlier against the
// rest of the expense population. Scoring uses the sample standard deviation
// with a floor of 1.0 when the spread is degenerate (a single expense, or all
// expenses equal); flagged rows keep the input order.
func (e *Estimator) DetectAnomalies(p *anonymize.Payload) ([]Anomaly, error) {
	if len(p.Features) == 0 || len(p.Dates) == 0 {
		return nil, fmt.Errorf("anomaly detection: %w", ErrInsufficientData)
	}

	type expense struct {
		date   string
		amount float64 // absolute value
	}
	var expenses []expense
	for i, f := range p.Features {
		if f.Amount < 0 {
			expenses = append(expenses, expense{date: p.Dates[i], amount: math.Abs(f.Amount)})
		}
	}
	if len(expenses) == 0 {
		return []Anomaly{}, nil
	}

	var sum float64
	for _, ex := range expenses {
		sum += ex.amount
	}
	mean := sum / float64(len(expenses))

	std := 1.0
	if n := len(expenses); n > 1 {
		var ss float64
		for _, ex := range expenses {
			d := ex.amount - mean
			ss += d * d
		}
		if s := math.Sqrt(ss / float64(n-1)); s > 0 {
			std = s
		}
	}

	anomalies := []Anomaly{}
	for _, ex := range expenses {
		z := (ex.amount - mean) / std
		if !isAnomalous(z) {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			Date:     ex.date,
			Amount:   -ex.amount,
			ZScore:   z,
			Severity: anomalySeverity(z),
		})
	}
	return anomalies, nil
}

// isAnomalous applies the strict z-score cutoff: a score of exactly 2.5 is
// not flagged.
func isAnomalous(z float64) bool {
	return z > anomalyThreshold
}

func anomalySeverity(z float64) string {
	if z > highSeverityZ {
		return SeverityHigh
	}
	return SeverityMedium
}
