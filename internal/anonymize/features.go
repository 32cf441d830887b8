package anonymize

import (
	"sort"

	"finsecure/internal/core"
)

type (
	// FeatureRow is the numeric projection of one transaction.
	FeatureRow struct {
		Amount         float64 `json:"amount"`
		Month          int     `json:"month"`          // 1-12
		DayOfWeek      int     `json:"day_of_week"`    // Monday=0 .. Sunday=6
		CategoryCode   int     `json:"category_code"`  // dense id per CategoryMapping
		DaysSinceFirst int     `json:"days_since_first"`
	}

	// Payload is the estimation input: feature rows, a parallel slice of
	// ISO dates, and the invertible category mapping used to encode
	// category_code.
	Payload struct {
		Features        []FeatureRow   `json:"features"`
		Dates           []string       `json:"dates"`
		CategoryMapping map[string]int `json:"category_mapping"`
	}
)

// Prepare anonymizes the ledger and derives the feature payload handed to an
// estimator or the computation gateway. Category codes are assigned by a
// fresh bijection over the ledger's distinct categories in sorted order, so
// the mapping is stable for a given category set and invertible for
// downstream remapping. days_since_first is 0 for the earliest row.
func Prepare(l core.Ledger) (*Payload, error) {
	minDate, err := l.MinDate()
	if err != nil {
		return nil, err
	}

	mapping := fitCategoryMapping(l)
	anon := Anonymize(l)
	// Estimators treat the trailing rows as the most recent activity, so the
	// payload is always in chronological order regardless of ledger order.
	sort.SliceStable(anon, func(i, j int) bool {
		return anon[i].Date.Before(anon[j].Date.Time)
	})

	p := &Payload{
		Features:        make([]FeatureRow, 0, len(anon)),
		Dates:           make([]string, 0, len(anon)),
		CategoryMapping: mapping,
	}
	for _, t := range anon {
		p.Features = append(p.Features, FeatureRow{
			Amount:         t.Amount,
			Month:          int(t.Date.Month()),
			DayOfWeek:      t.Date.WeekdayMondayZero(),
			CategoryCode:   mapping[t.Category],
			DaysSinceFirst: t.Date.DaysSince(minDate),
		})
		p.Dates = append(p.Dates, t.Date.String())
	}
	return p, nil
}

// InverseMapping inverts the category mapping, recovering category names from
// codes. Used by the savings-plan estimator.
func (p *Payload) InverseMapping() map[int]string {
	inv := make(map[int]string, len(p.CategoryMapping))
	for name, code := range p.CategoryMapping {
		inv[code] = name
	}
	return inv
}

func fitCategoryMapping(l core.Ledger) map[string]int {
	cats := l.Categories()
	sort.Strings(cats)
	mapping := make(map[string]int, len(cats))
	for i, c := range cats {
		mapping[c] = i
	}
	return mapping
}
