package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses a transaction table with a header row and normalizes it.
// Header names are matched case-insensitively; unknown columns are ignored.
// A missing required column surfaces as a SchemaError from Normalize.
func ReadCSV(r io.Reader) (Ledger, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		row := make(RawRow, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return Normalize(rows)
}

// WriteCSV emits the ledger as a CSV table with the canonical column order,
// suitable for backup snapshots.
func WriteCSV(w io.Writer, l Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "description", "category", "amount"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range l.Rows() {
		record := []string{row["date"], row["description"], row["category"], row["amount"]}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
