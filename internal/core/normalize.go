// Package core holds the ledger domain model and the pure data
// transformations derived from it: normalization, keyword categorization and
// the aggregate views consumed by the dashboard and budget endpoints.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// RawRow is a loosely typed transaction record keyed by lower-case column
// name, as produced by CSV import or the JSON transaction endpoint.
type RawRow map[string]string

// SchemaError reports a required column that is entirely absent from the
// input schema. Individual malformed rows never produce it; they are dropped.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// requiredColumns must be present in the input schema. category is optional
// and defaults to Uncategorized.
var requiredColumns = []string{"date", "amount", "description"}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Normalize validates and standardizes raw rows into a canonical ledger.
//
// Rows with unparseable dates or amounts are dropped silently; that lossy
// behavior is deliberate and documented. A missing description becomes
// "Unknown", a missing or blank category becomes "Uncategorized", and present
// categories are trimmed and capitalized. The result is ordered newest first.
//
// Normalize returns a SchemaError only when a required column is absent from
// the schema of every row.
func Normalize(rows []RawRow) (Ledger, error) {
	if len(rows) > 0 {
		for _, col := range requiredColumns {
			if !schemaHas(rows, col) {
				return nil, &SchemaError{Column: col}
			}
		}
	}

	ledger := make(Ledger, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(row["date"])
		if !ok {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(row["amount"]), 64)
		if err != nil {
			continue
		}

		desc := strings.TrimSpace(row["description"])
		if desc == "" {
			desc = DescriptionUnknown
		}

		cat := strings.TrimSpace(row["category"])
		if cat == "" {
			cat = CategoryUncategorized
		} else {
			cat = Capitalize(cat)
		}

		ledger = append(ledger, Transaction{
			Date:        date,
			Description: desc,
			Category:    cat,
			Amount:      amount,
		})
	}

	ledger.SortByDateDesc()
	return ledger, nil
}

func schemaHas(rows []RawRow, col string) bool {
	for _, row := range rows {
		if _, ok := row[col]; ok {
			return true
		}
	}
	return false
}

func parseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// Capitalize upper-cases the first rune and lower-cases the remainder,
// mirroring the normalization applied to category labels ("FOOD" -> "Food").
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// Rows converts a ledger back into raw rows, the inverse of Normalize for
// already-clean data. Used by the CSV backup writer.
func (l Ledger) Rows() []RawRow {
	rows := make([]RawRow, 0, len(l))
	for _, t := range l {
		rows = append(rows, RawRow{
			"date":        t.Date.String(),
			"description": t.Description,
			"category":    t.Category,
			"amount":      strconv.FormatFloat(t.Amount, 'f', -1, 64),
		})
	}
	return rows
}
