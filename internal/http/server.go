// Package http exposes the JSON API: ledger management, aggregation views,
// budget tracking, privacy-preserving analytics and snapshot backups.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finsecure/internal/amqp"
	"finsecure/internal/analytics"
	"finsecure/internal/cache"
	"finsecure/internal/gateway"
	"finsecure/internal/middleware/ratelimit"
	"finsecure/internal/middleware/security"
	"finsecure/internal/middleware/trace"
	"finsecure/internal/session"
)

// SessionHeader selects the session a request operates on; requests without
// it share the default session.
const SessionHeader = "X-Session-ID"

const (
	analysisCacheSize = 100
	analysisCacheTTL  = 5 * time.Minute
)

// JobPublisher enqueues asynchronous analysis jobs. A nil publisher disables
// the async endpoint without affecting the rest of the API.
type JobPublisher interface {
	PublishAnalysisJob(ctx context.Context, msg *amqp.AnalysisJobMessage) error
}

type Server struct {
	http.Server

	sessions  *session.Manager
	analytics *analytics.Service
	storage   gateway.Storage
	publisher JobPublisher

	extractor *security.IPExtractor
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware

	// analysisCache holds marshalled analysis responses keyed by session
	// revision, so repeated dashboard loads skip the gateway round trip.
	analysisCache *cache.LRUCache[[]byte]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, sessions *session.Manager, svc *analytics.Service, store gateway.Storage, publisher JobPublisher) *Server {
	mux := http.NewServeMux()

	extractor := security.NewIPExtractor()
	s := &Server{
		sessions:      sessions,
		analytics:     svc,
		storage:       store,
		publisher:     publisher,
		extractor:     extractor,
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:        trace.NewMiddleware(extractor.FromRequest),
		analysisCache: cache.NewLRU[[]byte](analysisCacheSize, analysisCacheTTL),
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/import", s.handleImport)
	mux.HandleFunc("/api/sample", s.handleSample)

	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/monthly", s.handleMonthly)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/budget", s.handleBudget)
	mux.HandleFunc("/api/budget/status", s.handleBudgetStatus)

	mux.HandleFunc("/api/analysis/forecast", s.handleForecast)
	mux.HandleFunc("/api/analysis/anomalies", s.handleAnomalies)
	mux.HandleFunc("/api/analysis/savings-plan", s.handleSavingsPlan)
	mux.HandleFunc("/api/analysis/insights", s.handleInsights)
	mux.HandleFunc("/api/analysis/suggestions", s.handleSuggestions)
	mux.HandleFunc("/api/analysis/jobs", s.handleEnqueueAnalysis)

	mux.HandleFunc("/api/backups", s.handleBackups)
	mux.HandleFunc("/api/backups/restore", s.handleRestore)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(extractor.FromRequest, nil)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Handler(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup alongside the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.storage != nil {
		if _, err := s.storage.List(r.Context()); err != nil {
			http.Error(w, "storage gateway not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
