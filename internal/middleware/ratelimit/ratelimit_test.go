package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLimiter(t *testing.T, perMinute int) *Limiter {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	return rl
}

func TestAllowWithinLimit(t *testing.T) {
	rl := testLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over limit allowed")
	}
}

func TestClientsAreIndependent(t *testing.T) {
	rl := testLimiter(t, 1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first client's first request denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client throttled by first client's traffic")
	}
	if rl.ActiveClients() != 2 {
		t.Errorf("ActiveClients() = %d, want 2", rl.ActiveClients())
	}
}

func TestMiddlewareThrottlesMutatingOnly(t *testing.T) {
	rl := testLimiter(t, 1)

	handler := rl.Middleware(func(*http.Request) string { return "10.0.0.1" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	post := func() int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))
		return rec.Code
	}

	if got := post(); got != http.StatusOK {
		t.Fatalf("first POST status = %d, want 200", got)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", got)
	}

	// Reads stay unlimited even when the window is exhausted.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareCustomOnLimit(t *testing.T) {
	rl := testLimiter(t, 1)

	called := false
	handler := rl.Middleware(
		func(*http.Request) string { return "10.0.0.1" },
		func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusServiceUnavailable)
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	}
	if !called {
		t.Error("custom onLimit handler not invoked")
	}
}
