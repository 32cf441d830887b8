package estimate

import (
	"fmt"
	"math"
	"time"

	"finsecure/internal/anonymize"
)

const (
	forecastConfidence = 0.6
	noiseFactor        = 0.2
	baselineWindow     = 7
)

// ForecastResult is the projected daily spending series. Values are negative
// (expenses); Baseline is the average daily expense the projection is built
// around.
type ForecastResult struct {
	Dates      []string  `json:"dates"`
	Values     []float64 `json:"values"`
	Confidence float64   `json:"confidence"`
	Baseline   float64   `json:"baseline"`
}

// Forecast projects daily spending for the given number of periods past the
// last ledger date. The baseline is the mean absolute expense over the most
// recent 7 feature rows; each projected day applies a weekly sinusoidal
// factor, a 1.5x weekend multiplier, and seeded Gaussian noise proportional
// to the baseline.
func (e *Estimator) Forecast(p *anonymize.Payload, periods int) (*ForecastResult, error) {
	if len(p.Features) == 0 || len(p.Dates) == 0 {
		return nil, fmt.Errorf("forecast: %w", ErrInsufficientData)
	}

	baseline := baselineExpense(p.Features)

	last, err := time.Parse("2006-01-02", p.Dates[len(p.Dates)-1])
	if err != nil {
		return nil, fmt.Errorf("forecast: parsing last date: %w", err)
	}

	rng := e.rng()
	out := &ForecastResult{
		Dates:      make([]string, 0, periods),
		Values:     make([]float64, 0, periods),
		Confidence: forecastConfidence,
		Baseline:   baseline,
	}
	for i := 0; i < periods; i++ {
		dayFactor := 1.0 + 0.3*math.Sin(float64(i%7)*math.Pi/3)
		weekendFactor := 1.0
		if i%7 >= 5 {
			weekendFactor = 1.5
		}
		noise := rng.NormFloat64() * noiseFactor * baseline

		out.Dates = append(out.Dates, last.AddDate(0, 0, i+1).Format("2006-01-02"))
		out.Values = append(out.Values, -1*dayFactor*weekendFactor*baseline+noise)
	}
	return out, nil
}

// baselineExpense averages the absolute expense amounts in the last
// baselineWindow rows. Windows without a single expense yield 0.
func baselineExpense(features []anonymize.FeatureRow) float64 {
	start := len(features) - baselineWindow
	if start < 0 {
		start = 0
	}

	var sum float64
	var n int
	for _, f := range features[start:] {
		if f.Amount < 0 {
			sum += math.Abs(f.Amount)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
