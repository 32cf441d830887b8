package estimate

import (
	"errors"
	"math"
	"testing"

	"finsecure/internal/anonymize"
)

// payload builds a one-category feature payload from (date, amount) pairs.
func payload(rows []struct {
	date   string
	amount float64
}) *anonymize.Payload {
	p := &anonymize.Payload{CategoryMapping: map[string]int{"Food": 0}}
	for i, r := range rows {
		p.Features = append(p.Features, anonymize.FeatureRow{
			Amount:         r.amount,
			Month:          1,
			DaysSinceFirst: i,
		})
		p.Dates = append(p.Dates, r.date)
	}
	return p
}

func TestForecastDeterministic(t *testing.T) {
	p := payload([]struct {
		date   string
		amount float64
	}{
		{"2024-01-01", -50},
		{"2024-01-02", -70},
		{"2024-01-03", -30},
	})

	a, err := New(42).Forecast(p, 14)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	b, err := New(42).Forecast(p, 14)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if len(a.Values) != 14 || len(a.Dates) != 14 {
		t.Fatalf("series lengths = %d/%d, want 14/14", len(a.Values), len(a.Dates))
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("value %d differs across runs: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}
	if a.Dates[0] != "2024-01-04" || a.Dates[13] != "2024-01-17" {
		t.Errorf("dates = %q..%q, want 2024-01-04..2024-01-17", a.Dates[0], a.Dates[13])
	}
	if a.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", a.Confidence)
	}
	if !almostEqual(a.Baseline, 50) {
		t.Errorf("baseline = %v, want 50", a.Baseline)
	}
}

func TestForecastSeedChangesNoise(t *testing.T) {
	p := payload([]struct {
		date   string
		amount float64
	}{
		{"2024-01-01", -100},
	})

	a, _ := New(1).Forecast(p, 7)
	b, _ := New(2).Forecast(p, 7)
	same := true
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestForecastBaselineWindow(t *testing.T) {
	// Ten expense rows; only the last seven (60..120) feed the baseline.
	rows := make([]struct {
		date   string
		amount float64
	}, 0, 10)
	amounts := []float64{-1000, -1000, -1000, -60, -70, -80, -90, -100, -110, -120}
	dates := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05",
		"2024-01-06", "2024-01-07", "2024-01-08", "2024-01-09", "2024-01-10",
	}
	for i := range amounts {
		rows = append(rows, struct {
			date   string
			amount float64
		}{dates[i], amounts[i]})
	}

	got, err := NewDefault().Forecast(payload(rows), 5)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if !almostEqual(got.Baseline, 90) {
		t.Errorf("baseline = %v, want mean of last seven rows (90)", got.Baseline)
	}
}

func TestForecastNoRecentExpenses(t *testing.T) {
	// Income-only window: baseline 0, noise 0, flat series.
	p := payload([]struct {
		date   string
		amount float64
	}{
		{"2024-01-01", 2500},
		{"2024-01-02", 100},
	})

	got, err := NewDefault().Forecast(p, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got.Baseline != 0 {
		t.Fatalf("baseline = %v, want 0", got.Baseline)
	}
	for i, v := range got.Values {
		if v != 0 {
			t.Errorf("value %d = %v, want 0 with zero baseline", i, v)
		}
	}
}

func TestForecastWeekendPattern(t *testing.T) {
	p := payload([]struct {
		date   string
		amount float64
	}{
		{"2024-01-01", -100},
	})

	got, err := NewDefault().Forecast(p, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	// Strip the deterministic noise by re-deriving it with the same seed.
	rng := NewDefault().rng()
	for i, v := range got.Values {
		noise := rng.NormFloat64() * 0.2 * got.Baseline
		dayFactor := 1.0 + 0.3*math.Sin(float64(i%7)*math.Pi/3)
		weekend := 1.0
		if i%7 >= 5 {
			weekend = 1.5
		}
		want := -1*dayFactor*weekend*got.Baseline + noise
		if !almostEqual(v, want) {
			t.Errorf("value %d = %v, want %v", i, v, want)
		}
	}
}

func TestForecastEmptyPayload(t *testing.T) {
	_, err := NewDefault().Forecast(&anonymize.Payload{}, 30)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Forecast(empty) error = %v, want ErrInsufficientData", err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
