package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the JSON document exchanged with the storage gateway: the
// backup flow writes one, the analysis worker reads one back. The budget is
// optional so analysis-only snapshots stay small.
type Snapshot struct {
	CreatedAt    time.Time          `json:"created_at"`
	Transactions Ledger             `json:"transactions"`
	Budget       map[string]float64 `json:"budget,omitempty"`
}

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored snapshot and restores descending date order
// on the ledger, so a snapshot produced by an older build stays usable.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	s.Transactions.SortByDateDesc()
	return s, nil
}
