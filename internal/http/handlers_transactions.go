package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"finsecure/internal/core"
	"finsecure/internal/estimate"
)

const maxImportBytes = 10 << 20 // 10 MiB

// transactionRequest is the add-transaction body. Category is optional; a
// missing category is filled by the keyword rules.
type transactionRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
}

type transactionsResponse struct {
	Transactions core.Ledger `json:"transactions"`
	Count        int         `json:"count"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.addTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ledger := s.sessionFor(r).Ledger()
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: ledger, Count: len(ledger)})
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	description := sanitizeInput(req.Description)
	if description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-zero")
		return
	}

	tx := core.Transaction{
		Date:        date,
		Description: description,
		Category:    core.Capitalize(sanitizeInput(req.Category)),
		Amount:      req.Amount,
	}
	if tx.Category == "" {
		categorized, err := core.Categorize(core.Ledger{tx}, nil)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		tx = categorized[0]
	}

	sess := s.sessionFor(r)
	sess.Append(tx)

	slog.InfoContext(r.Context(), "Added transaction",
		"session_id", sess.ID(),
		"category", tx.Category,
		"amount", tx.Amount)
	writeJSON(w, http.StatusCreated, tx)
}

// handleImport replaces the session ledger with an uploaded CSV. The file
// rides either in a multipart "file" field or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	reader := io.Reader(r.Body)
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	ledger, err := core.ReadCSV(reader)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(ledger) == 0 {
		writeError(w, http.StatusBadRequest, "no transactions found in upload")
		return
	}

	ledger, err = core.Categorize(ledger, nil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sess := s.sessionFor(r)
	sess.SetLedger(ledger)
	sess.SetBudget(core.DefaultBudget(ledger, core.DateOf(time.Now())))

	slog.InfoContext(r.Context(), "Imported ledger",
		"session_id", sess.ID(),
		"transactions", len(ledger))
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: ledger, Count: len(ledger)})
}

// handleSample reloads the seeded sample ledger, optionally with a caller
// supplied seed for reproducible demos.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	seed := int64(intQuery(r, "seed", int(estimate.DefaultSeed)))
	today := core.DateOf(time.Now())
	ledger := core.GenerateSample(seed, today)

	sess := s.sessionFor(r)
	sess.SetLedger(ledger)
	sess.SetBudget(core.DefaultBudget(ledger, today))

	slog.InfoContext(r.Context(), "Loaded sample ledger",
		"session_id", sess.ID(),
		"seed", seed,
		"transactions", len(ledger))
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: ledger, Count: len(ledger)})
}
