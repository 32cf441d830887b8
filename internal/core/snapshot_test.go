package core

import (
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	snapshot := Snapshot{
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Transactions: Ledger{
			{Date: NewDate(2024, 5, 1), Description: "Rent", Category: "Housing", Amount: -1200},
			{Date: NewDate(2024, 5, 15), Description: "Salary", Category: "Income", Amount: 3000},
		},
		Budget: map[string]float64{"Housing": 1300},
	}

	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if len(decoded.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(decoded.Transactions))
	}
	// Decoding restores newest-first order regardless of stored order.
	if decoded.Transactions[0].Description != "Salary" {
		t.Errorf("transactions[0] = %+v, want the May 15 salary first", decoded.Transactions[0])
	}
	if decoded.Budget["Housing"] != 1300 {
		t.Errorf("budget Housing = %v, want 1300", decoded.Budget["Housing"])
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not json")); err == nil {
		t.Fatal("DecodeSnapshot() = nil error for malformed input")
	}
}
