package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finsecure/internal/core"
	"finsecure/internal/gateway"
)

func (s *Server) handleBackups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, struct {
			Backups []gateway.StoredObject `json:"backups"`
		}{s.sessionFor(r).Backups()})
	case http.MethodPost:
		s.createBackup(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// createBackup snapshots the session ledger and budget through the storage
// gateway and records the reference in the session history.
func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	ledger := sess.Ledger()
	if len(ledger) == 0 {
		writeError(w, http.StatusUnprocessableEntity, core.ErrEmptyLedger.Error())
		return
	}

	now := time.Now().UTC()
	content, err := core.EncodeSnapshot(core.Snapshot{
		CreatedAt:    now,
		Transactions: ledger,
		Budget:       sess.Budget(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	name := fmt.Sprintf("finsecure-backup-%s.json", now.Format("20060102-150405"))
	obj, err := s.storage.Put(r.Context(), name, content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sess.AddBackup(obj)

	slog.InfoContext(r.Context(), "Created backup",
		"session_id", sess.ID(),
		"ref", obj.Ref,
		"size", obj.Size)
	writeJSON(w, http.StatusCreated, obj)
}

// handleRestore replaces the session state with a stored snapshot.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Ref string `json:"ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Ref == "" {
		writeError(w, http.StatusBadRequest, "ref is required")
		return
	}

	content, err := s.storage.Get(r.Context(), req.Ref)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	snapshot, err := core.DecodeSnapshot(content)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sess := s.sessionFor(r)
	sess.SetLedger(snapshot.Transactions)
	if len(snapshot.Budget) > 0 {
		sess.SetBudget(snapshot.Budget)
	}

	slog.InfoContext(r.Context(), "Restored backup",
		"session_id", sess.ID(),
		"ref", req.Ref,
		"transactions", len(snapshot.Transactions))
	writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: snapshot.Transactions,
		Count:        len(snapshot.Transactions),
	})
}
