package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finsecure/internal/amqp"
	"finsecure/internal/core"
	"finsecure/internal/gateway"
)

const (
	defaultForecastDays  = 30
	maxForecastDays      = 365
	defaultSavingsTarget = 500
)

// cachedAnalysis serves a marshalled analysis response from the cache or
// computes, stores and writes it. Keys carry the session revision, so any
// ledger mutation naturally misses.
func (s *Server) cachedAnalysis(w http.ResponseWriter, r *http.Request, key string, compute func() (any, error)) {
	if body, ok := s.analysisCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	result, err := compute()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.analysisCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) analysisKey(r *http.Request, name string, params string) string {
	sess := s.sessionFor(r)
	return fmt.Sprintf("%s:%d:%s:%s", sess.ID(), sess.Revision(), name, params)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	days := intQuery(r, "days", defaultForecastDays)
	if days < 1 || days > maxForecastDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be 1-%d", maxForecastDays))
		return
	}

	key := s.analysisKey(r, "forecast", fmt.Sprintf("days=%d", days))
	s.cachedAnalysis(w, r, key, func() (any, error) {
		return s.analytics.Forecast(r.Context(), s.sessionFor(r).Ledger(), days)
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	key := s.analysisKey(r, "anomalies", "")
	s.cachedAnalysis(w, r, key, func() (any, error) {
		return s.analytics.Anomalies(r.Context(), s.sessionFor(r).Ledger())
	})
}

func (s *Server) handleSavingsPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	target := floatQuery(r, "target", defaultSavingsTarget)
	key := s.analysisKey(r, "savings-plan", fmt.Sprintf("target=%g", target))
	s.cachedAnalysis(w, r, key, func() (any, error) {
		return s.analytics.SavingsPlan(r.Context(), s.sessionFor(r).Ledger(), target)
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	days := intQuery(r, "days", defaultForecastDays)
	if days < 1 || days > maxForecastDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be 1-%d", maxForecastDays))
		return
	}
	target := floatQuery(r, "target", defaultSavingsTarget)

	key := s.analysisKey(r, "insights", fmt.Sprintf("days=%d&target=%g", days, target))
	s.cachedAnalysis(w, r, key, func() (any, error) {
		return s.analytics.Insights(r.Context(), s.sessionFor(r).Ledger(), days, target)
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	key := s.analysisKey(r, "suggestions", "")
	s.cachedAnalysis(w, r, key, func() (any, error) {
		return s.analytics.Suggestions(r.Context(), s.sessionFor(r).Ledger())
	})
}

// analysisJobRequest enqueues an asynchronous analysis run over AMQP.
type analysisJobRequest struct {
	Task          gateway.Task `json:"task"`
	Periods       int          `json:"periods,omitempty"`
	TargetSavings float64      `json:"target_savings,omitempty"`
}

type analysisJobResponse struct {
	JobID       string       `json:"job_id"`
	Task        gateway.Task `json:"task"`
	SnapshotRef string       `json:"snapshot_ref"`
}

func (s *Server) handleEnqueueAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "async analysis is not configured")
		return
	}

	var req analysisJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Task.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown task %q", req.Task))
		return
	}

	sess := s.sessionFor(r)
	ledger := sess.Ledger()
	if len(ledger) == 0 {
		writeError(w, http.StatusUnprocessableEntity, core.ErrEmptyLedger.Error())
		return
	}

	content, err := core.EncodeSnapshot(core.Snapshot{
		CreatedAt:    time.Now().UTC(),
		Transactions: ledger,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	obj, err := s.storage.Put(r.Context(), fmt.Sprintf("analysis-input-%s.json", sess.ID()), content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := amqp.NewAnalysisJobMessage(req.Task, obj.Ref)
	msg.Periods = req.Periods
	msg.TargetSavings = req.TargetSavings
	if err := s.publisher.PublishAnalysisJob(r.Context(), msg); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Enqueued analysis job",
		"session_id", sess.ID(),
		"job_id", msg.JobID,
		"task", msg.Task)
	writeJSON(w, http.StatusAccepted, analysisJobResponse{
		JobID:       msg.JobID,
		Task:        msg.Task,
		SnapshotRef: obj.Ref,
	})
}
