package core

import (
	"math"
	"sort"
)

type (
	// CategoryAggregate summarizes expense activity for one category.
	CategoryAggregate struct {
		Category   string  `json:"category"`
		Total      float64 `json:"total"`
		Count      int     `json:"count"`
		Average    float64 `json:"average"`
		Percentage float64 `json:"percentage"`
	}

	// MonthSummary is the income/expense/net breakdown of one calendar month.
	MonthSummary struct {
		Month       string  `json:"month"` // "YYYY-MM"
		Income      float64 `json:"income"`
		Expenses    float64 `json:"expenses"`
		Net         float64 `json:"net"`
		SavingsRate float64 `json:"savings_rate"`
	}

	// OverviewTotals are the headline figures for the whole ledger.
	OverviewTotals struct {
		TotalIncome   float64 `json:"total_income"`
		TotalExpenses float64 `json:"total_expenses"`
		Balance       float64 `json:"balance"`
		SavingsRate   float64 `json:"savings_rate"`
	}

	// BudgetStatus compares one category's budget against actual spending
	// in a single month.
	BudgetStatus struct {
		Category   string  `json:"category"`
		Budget     float64 `json:"budget"`
		Spent      float64 `json:"spent"`
		Remaining  float64 `json:"remaining"`
		Percentage float64 `json:"percentage"`
	}
)

// CategorySpending aggregates expense transactions by category, sorted by
// total descending. Income rows do not contribute. Percentages sum to 100
// when at least one expense exists; with no expenses the result is empty.
func CategorySpending(l Ledger) []CategoryAggregate {
	totals := map[string]*CategoryAggregate{}
	var order []string
	for _, t := range l {
		if !t.IsExpense() {
			continue
		}
		agg, ok := totals[t.Category]
		if !ok {
			agg = &CategoryAggregate{Category: t.Category}
			totals[t.Category] = agg
			order = append(order, t.Category)
		}
		agg.Total += math.Abs(t.Amount)
		agg.Count++
	}
	if len(order) == 0 {
		return nil
	}

	var grand float64
	for _, cat := range order {
		grand += totals[cat].Total
	}

	out := make([]CategoryAggregate, 0, len(order))
	for _, cat := range order {
		agg := *totals[cat]
		agg.Average = agg.Total / float64(agg.Count)
		if grand > 0 {
			agg.Percentage = agg.Total / grand * 100
		}
		out = append(out, agg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlySummaries returns one summary per calendar month present in the
// ledger, ascending by month. The savings rate is 0 rather than NaN for
// months without income.
func MonthlySummaries(l Ledger) []MonthSummary {
	byMonth := map[string]*MonthSummary{}
	for _, t := range l {
		key := t.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{Month: key}
			byMonth[key] = m
		}
		m.Net += t.Amount
		if t.IsIncome() {
			m.Income += t.Amount
		} else if t.IsExpense() {
			m.Expenses += math.Abs(t.Amount)
		}
	}

	out := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		if m.Income > 0 {
			m.SavingsRate = (m.Income - m.Expenses) / m.Income * 100
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Overview computes the headline totals across the whole ledger.
func Overview(l Ledger) OverviewTotals {
	var o OverviewTotals
	for _, t := range l {
		if t.IsIncome() {
			o.TotalIncome += t.Amount
		} else if t.IsExpense() {
			o.TotalExpenses += math.Abs(t.Amount)
		}
	}
	o.Balance = o.TotalIncome - o.TotalExpenses
	if o.TotalIncome > 0 {
		o.SavingsRate = o.Balance / o.TotalIncome * 100
	}
	return o
}

// DefaultBudget derives per-category monthly targets from historical
// spending: the category's monthly average, rounded to the nearest 10 units.
// The month count is approximated as days-of-history / 30, floored at one
// month.
func DefaultBudget(l Ledger, today Date) map[string]float64 {
	budget := map[string]float64{}
	minDate, err := l.MinDate()
	if err != nil {
		return budget
	}
	months := math.Max(1, float64(today.DaysSince(minDate))/30)

	for _, agg := range CategorySpending(l) {
		monthlyAvg := agg.Total / months
		budget[agg.Category] = math.Round(monthlyAvg/10) * 10
	}
	return budget
}

// BudgetProgress reports spending against budget for one calendar month.
// Percentage is capped at 100 and remaining floors at 0, matching the budget
// view. Results are sorted by percentage descending.
func BudgetProgress(l Ledger, budget map[string]float64, year, month int) []BudgetStatus {
	spent := map[string]float64{}
	for _, t := range l {
		if !t.IsExpense() {
			continue
		}
		if t.Date.Year() != year || int(t.Date.Month()) != month {
			continue
		}
		spent[t.Category] += math.Abs(t.Amount)
	}

	out := make([]BudgetStatus, 0, len(budget))
	for cat, b := range budget {
		s := spent[cat]
		status := BudgetStatus{Category: cat, Budget: b, Spent: s}
		if b > 0 {
			status.Percentage = math.Min(100, s/b*100)
		}
		status.Remaining = math.Max(0, b-s)
		out = append(out, status)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Category < out[j].Category
	})
	return out
}
