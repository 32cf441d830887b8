package estimate

import (
	"fmt"
	"math"
	"sort"

	"finsecure/internal/anonymize"
)

// Savings plan statuses.
const (
	StatusOnTrack    = "on_track"
	StatusAchievable = "achievable"
	StatusGap        = "gap"
)

const minMonthlySpend = 20 // categories below this are not worth recommending

// CategoryRecommendation suggests a spending reduction for one category.
type CategoryRecommendation struct {
	Category                string   `json:"category"`
	CurrentMonthlySpending  float64  `json:"current_monthly_spending"`
	SuggestedReductionPct   float64  `json:"suggested_reduction_percent"`
	PotentialMonthlySavings float64  `json:"potential_monthly_savings"`
	Tips                    []string `json:"tips"`
}

// SavingsPlan is the result of PlanSavings. Status is on_track when the
// target is already met, achievable when the recommendations cover the gap,
// and gap when they fall short.
type SavingsPlan struct {
	Status                 string                   `json:"status"`
	Message                string                   `json:"message,omitempty"`
	CurrentMonthlyIncome   float64                  `json:"current_monthly_income"`
	CurrentMonthlyExpenses float64                  `json:"current_monthly_expenses"`
	CurrentMonthlySavings  float64                  `json:"current_monthly_savings"`
	TargetSavings          float64                  `json:"target_savings"`
	SavingsGap             float64                  `json:"savings_gap,omitempty"`
	Surplus                float64                  `json:"surplus,omitempty"`
	PotentialSavings       float64                  `json:"potential_savings,omitempty"`
	Recommendations        []CategoryRecommendation `json:"recommendations,omitempty"`
}

// PlanSavings builds per-category reduction recommendations toward a monthly
// savings target. Essential categories (Housing, Insurance, Utilities) get a
// 5% suggested cut, semi-essential ones (Transportation, Groceries,
// Healthcare) 10%, everything else 20%. Categories are scanned in order of
// total spending and the scan stops once the accumulated potential covers the
// gap.
func (e *Estimator) PlanSavings(p *anonymize.Payload, targetSavings float64) (*SavingsPlan, error) {
	if len(p.Features) == 0 {
		return nil, fmt.Errorf("savings plan: %w", ErrInsufficientData)
	}

	inv := p.InverseMapping()

	type catTotal struct {
		category string
		total    float64
	}
	totals := map[string]float64{}
	var expenseSum, incomeSum float64
	maxDays := 0
	for _, f := range p.Features {
		if f.DaysSinceFirst > maxDays {
			maxDays = f.DaysSinceFirst
		}
		if f.Amount < 0 {
			amt := math.Abs(f.Amount)
			expenseSum += amt
			totals[inv[f.CategoryCode]] += amt
		} else if f.Amount > 0 {
			incomeSum += f.Amount
		}
	}
	if expenseSum == 0 {
		return nil, fmt.Errorf("savings plan: no expense rows: %w", ErrInsufficientData)
	}

	months := float64(maxDays+1) / 30
	if months < 1 {
		months = 1
	}
	monthlyExpenses := expenseSum / months
	monthlyIncome := incomeSum / months
	currentSavings := monthlyIncome - monthlyExpenses

	plan := &SavingsPlan{
		CurrentMonthlyIncome:   monthlyIncome,
		CurrentMonthlyExpenses: monthlyExpenses,
		CurrentMonthlySavings:  currentSavings,
		TargetSavings:          targetSavings,
	}

	gap := targetSavings - currentSavings
	if gap <= 0 {
		plan.Status = StatusOnTrack
		plan.Message = "You're already meeting or exceeding your savings target!"
		plan.Surplus = -gap
		return plan, nil
	}
	plan.SavingsGap = gap

	ranked := make([]catTotal, 0, len(totals))
	for c, t := range totals {
		ranked = append(ranked, catTotal{category: c, total: t})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].category < ranked[j].category
	})

	remaining := gap
	for _, ct := range ranked {
		monthly := ct.total / months
		if monthly < minMonthlySpend {
			continue
		}
		if remaining <= 0 {
			break
		}

		pct := reductionPct(ct.category)
		potential := monthly * pct
		plan.Recommendations = append(plan.Recommendations, CategoryRecommendation{
			Category:                ct.category,
			CurrentMonthlySpending:  monthly,
			SuggestedReductionPct:   pct * 100,
			PotentialMonthlySavings: potential,
			Tips:                    savingsTips(ct.category),
		})
		plan.PotentialSavings += potential
		remaining -= potential
	}

	if plan.PotentialSavings < gap {
		plan.Status = StatusGap
	} else {
		plan.Status = StatusAchievable
	}
	return plan, nil
}

func reductionPct(category string) float64 {
	switch category {
	case "Housing", "Insurance", "Utilities":
		return 0.05
	case "Transportation", "Groceries", "Healthcare":
		return 0.1
	default:
		return 0.2
	}
}
