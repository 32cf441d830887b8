package http

import (
	"encoding/json"
	"net/http"
	"time"

	"finsecure/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ledger := s.sessionFor(r).Ledger()
	writeJSON(w, http.StatusOK, struct {
		core.OverviewTotals
		TransactionCount int `json:"transaction_count"`
	}{
		OverviewTotals:   core.Overview(ledger),
		TransactionCount: len(ledger),
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Months []core.MonthSummary `json:"months"`
	}{core.MonthlySummaries(s.sessionFor(r).Ledger())})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Categories []core.CategoryAggregate `json:"categories"`
	}{core.CategorySpending(s.sessionFor(r).Ledger())})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, struct {
			Budget map[string]float64 `json:"budget"`
		}{s.sessionFor(r).Budget()})
	case http.MethodPut:
		s.updateBudget(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Budget map[string]float64 `json:"budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Budget) == 0 {
		writeError(w, http.StatusBadRequest, "budget must not be empty")
		return
	}

	budget := make(map[string]float64, len(req.Budget))
	for category, amount := range req.Budget {
		if amount < 0 {
			writeError(w, http.StatusBadRequest, "budget amounts must be non-negative")
			return
		}
		name := core.Capitalize(sanitizeInput(category))
		if name == "" {
			writeError(w, http.StatusBadRequest, "budget categories must be named")
			return
		}
		budget[name] = amount
	}

	s.sessionFor(r).SetBudget(budget)
	writeJSON(w, http.StatusOK, struct {
		Budget map[string]float64 `json:"budget"`
	}{budget})
}

// handleBudgetStatus reports spending against budget for one month,
// defaulting to the current one.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	now := time.Now()
	year := intQuery(r, "year", now.Year())
	month := intQuery(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}

	sess := s.sessionFor(r)
	writeJSON(w, http.StatusOK, struct {
		Year     int                 `json:"year"`
		Month    int                 `json:"month"`
		Statuses []core.BudgetStatus `json:"statuses"`
	}{year, month, core.BudgetProgress(sess.Ledger(), sess.Budget(), year, month)})
}
