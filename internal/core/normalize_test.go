package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeDropsInvalidRows(t *testing.T) {
	rows := []RawRow{
		{"date": "2024-03-01", "amount": "-42.50", "description": "Coffee", "category": "food"},
		{"date": "not-a-date", "amount": "-10", "description": "Broken date"},
		{"date": "2024-03-02", "amount": "oops", "description": "Broken amount"},
		{"date": "2024-03-03", "amount": "1500", "description": "Salary", "category": "Income"},
	}

	ledger, err := Normalize(rows)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("Normalize() kept %d rows, want 2", len(ledger))
	}
	// Newest first.
	if ledger[0].Description != "Salary" || ledger[1].Description != "Coffee" {
		t.Errorf("unexpected order: %q then %q", ledger[0].Description, ledger[1].Description)
	}
	if ledger[1].Category != "Food" {
		t.Errorf("category = %q, want %q", ledger[1].Category, "Food")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rows := []RawRow{
		{"date": "2024-01-15", "amount": "-5", "description": "   "},
		{"date": "2024-01-16", "amount": "-6", "description": "No category"},
	}
	ledger, err := Normalize(rows)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := ledger[1].Description; got != DescriptionUnknown {
		t.Errorf("blank description = %q, want %q", got, DescriptionUnknown)
	}
	for _, tx := range ledger {
		if tx.Category != CategoryUncategorized {
			t.Errorf("category = %q, want %q", tx.Category, CategoryUncategorized)
		}
	}
}

func TestNormalizeSchemaError(t *testing.T) {
	rows := []RawRow{
		{"date": "2024-01-15", "description": "no amount column"},
	}
	_, err := Normalize(rows)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Normalize() error = %v, want SchemaError", err)
	}
	if schemaErr.Column != "amount" {
		t.Errorf("SchemaError.Column = %q, want %q", schemaErr.Column, "amount")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	ledger, err := Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize(nil) error = %v", err)
	}
	if len(ledger) != 0 {
		t.Fatalf("Normalize(nil) = %d rows, want 0", len(ledger))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rows := []RawRow{
		{"date": "2024-02-01", "amount": "-100", "description": "Rent", "category": "Housing"},
		{"date": "2024-02-10", "amount": "2000", "description": "Salary", "category": "Income"},
		{"date": "2024-02-05", "amount": "-30.25", "description": "Dinner", "category": "Food"},
	}
	once, err := Normalize(rows)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	twice, err := Normalize(once.Rows())
	if err != nil {
		t.Fatalf("re-Normalize() error = %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("row count changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("row %d changed: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"food", "Food"},
		{"FOOD", "Food"},
		{"debt payment", "Debt payment"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Category,Amount",
		"2024-03-01,Coffee,Food,-4.50",
		"garbage,Broken,, -1",
		"2024-03-02,Salary,Income,2500",
	}, "\n")

	ledger, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("ReadCSV() kept %d rows, want 2", len(ledger))
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := "Date,Description\n2024-03-01,Coffee\n"
	_, err := ReadCSV(strings.NewReader(input))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("ReadCSV() error = %v, want SchemaError", err)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ledger := Ledger{
		{Date: NewDate(2024, 3, 2), Description: "Salary", Category: "Income", Amount: 2500},
		{Date: NewDate(2024, 3, 1), Description: "Coffee", Category: "Food", Amount: -4.5},
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, ledger); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	restored, err := ReadCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(restored) != len(ledger) {
		t.Fatalf("round trip row count = %d, want %d", len(restored), len(ledger))
	}
	for i := range ledger {
		if restored[i] != ledger[i] {
			t.Errorf("row %d = %+v, want %+v", i, restored[i], ledger[i])
		}
	}
}
