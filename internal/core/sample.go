package core

import "math/rand"

// GenerateSample builds a deterministic six-month demo ledger ending at end:
// bi-weekly salary, monthly rent and utilities, and periodic food, transport,
// entertainment and shopping expenses. The same seed always yields the same
// ledger.
func GenerateSample(seed int64, end Date) Ledger {
	rng := rand.New(rand.NewSource(seed))
	const days = 180
	start := end.AddDays(-days)

	normal := func(mean, stddev float64) float64 {
		return rng.NormFloat64()*stddev + mean
	}
	var ledger Ledger
	add := func(dayOffset int, desc, cat string, amount float64) {
		if dayOffset > days {
			dayOffset = days
		}
		ledger = append(ledger, Transaction{
			Date:        start.AddDays(dayOffset),
			Description: desc,
			Category:    cat,
			Amount:      amount,
		})
	}

	for i := 0; i <= days; i += 14 {
		add(i, "Salary", "Income", normal(3500, 100))
	}
	for i := 0; i <= days; i += 30 {
		add(i, "Rent/Mortgage", "Housing", -normal(1200, 10))
		add(i+1, "Electric Bill", "Utilities", -normal(120, 20))
		add(i+2, "Water Bill", "Utilities", -normal(80, 10))
		add(i+3, "Internet", "Utilities", -normal(70, 5))
	}
	for i := 0; i <= days; i += 4 {
		add(i, "Grocery Shopping", "Food", -normal(120, 30))
	}
	for i := 0; i <= days; i += 10 {
		add(i, "Restaurant", "Food", -normal(50, 20))
	}
	for i := 0; i <= days; i += 7 {
		add(i, "Gas", "Transportation", -normal(40, 10))
	}
	for i := 0; i <= days; i += 15 {
		add(i, "Movie/Entertainment", "Entertainment", -normal(60, 20))
	}
	for i := 0; i <= days; i += 20 {
		add(i, "Online Shopping", "Shopping", -normal(80, 40))
	}

	ledger.SortByDateDesc()
	return ledger
}
