package core

import (
	"errors"
	"sort"
	"time"
)

const (
	// CategoryUncategorized is assigned to transactions without a usable category.
	CategoryUncategorized = "Uncategorized"
	// DescriptionUnknown replaces missing transaction descriptions.
	DescriptionUnknown = "Unknown"
)

var ErrEmptyLedger = errors.New("ledger is empty")

type (
	// Date is a calendar date; the time-of-day component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single dated, categorized monetary event. Positive
	// amounts are income, negative amounts are expenses. Amounts carry no
	// currency; a single implicit currency is assumed.
	Transaction struct {
		Date        Date    `json:"date"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
	}

	// Ledger is the full set of a session's transactions, ordered by date
	// descending after normalization.
	Ledger []Transaction
)

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole number of days from earlier to d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Time.Sub(earlier.Time) / (24 * time.Hour))
}

// MonthKey returns the calendar month in "YYYY-MM" form.
func (d Date) MonthKey() string {
	return d.Time.Format("2006-01")
}

// WeekdayMondayZero returns the day of week with Monday as 0 and Sunday as 6.
func (d Date) WeekdayMondayZero() int {
	return (int(d.Time.Weekday()) + 6) % 7
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = DateOf(parsed)
	return nil
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool { return t.Amount < 0 }

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool { return t.Amount > 0 }

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

// MinDate returns the earliest transaction date.
func (l Ledger) MinDate() (Date, error) {
	if len(l) == 0 {
		return Date{}, ErrEmptyLedger
	}
	min := l[0].Date
	for _, t := range l[1:] {
		if t.Date.Before(min.Time) {
			min = t.Date
		}
	}
	return min, nil
}

// MaxDate returns the latest transaction date.
func (l Ledger) MaxDate() (Date, error) {
	if len(l) == 0 {
		return Date{}, ErrEmptyLedger
	}
	max := l[0].Date
	for _, t := range l[1:] {
		if t.Date.After(max.Time) {
			max = t.Date
		}
	}
	return max, nil
}

// Categories returns the distinct category names present, sorted.
func (l Ledger) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range l {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}

// SortByDateDesc orders the ledger newest first. The sort is stable so
// same-day transactions keep their relative order.
func (l Ledger) SortByDateDesc() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Date.After(l[j].Date.Time)
	})
}
