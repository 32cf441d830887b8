// Package session holds the per-user mutable state: the working ledger, the
// budget, and the backup history. Sessions are independent; mutating one
// never leaks into another.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finsecure/internal/core"
	"finsecure/internal/gateway"
)

// timeNow is swapped in tests that need a fixed budget baseline.
var timeNow = time.Now

// DefaultID is the session used when a request carries no session header.
const DefaultID = "default"

type Session struct {
	mu       sync.RWMutex
	id       string
	revision int64
	ledger   core.Ledger
	budget   map[string]float64
	backups  []gateway.StoredObject
}

func (s *Session) ID() string {
	return s.id
}

// Revision increases on every ledger mutation. Cache keys derived from it go
// stale the moment the ledger changes.
func (s *Session) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Ledger returns a copy of the session's transactions; callers may mutate it
// freely.
func (s *Session) Ledger() core.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone()
}

// SetLedger replaces the working ledger, re-establishing descending date
// order.
func (s *Session) SetLedger(l core.Ledger) {
	clone := l.Clone()
	clone.SortByDateDesc()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = clone
	s.revision++
}

// Append adds one transaction, keeping the ledger sorted.
func (s *Session) Append(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, tx)
	s.ledger.SortByDateDesc()
	s.revision++
}

func (s *Session) Budget() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budget := make(map[string]float64, len(s.budget))
	for category, amount := range s.budget {
		budget[category] = amount
	}
	return budget
}

func (s *Session) SetBudget(budget map[string]float64) {
	copied := make(map[string]float64, len(budget))
	for category, amount := range budget {
		copied[category] = amount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = copied
}

// AddBackup records a stored snapshot at the head of the history.
func (s *Session) AddBackup(obj gateway.StoredObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backups = append([]gateway.StoredObject{obj}, s.backups...)
}

func (s *Session) Backups() []gateway.StoredObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	backups := make([]gateway.StoredObject, len(s.backups))
	copy(backups, s.backups)
	return backups
}

// Manager hands out sessions by id. Every fresh session starts from its own
// copy of the seed ledger, so two sessions never share transaction state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	seed     core.Ledger
}

func NewManager(seed core.Ledger) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		seed:     seed.Clone(),
	}
	m.sessions[DefaultID] = m.newSession(DefaultID)
	return m
}

// Get returns the session for id, creating it on first use. An empty id
// selects the default session.
func (m *Manager) Get(id string) *Session {
	if id == "" {
		id = DefaultID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := m.newSession(id)
	m.sessions[id] = s
	return s
}

// New creates a session under a fresh uuid.
func (m *Manager) New() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	s := m.newSession(id)
	m.sessions[id] = s
	return s
}

// newSession assumes m.mu is held (or the manager is not yet shared).
func (m *Manager) newSession(id string) *Session {
	ledger := m.seed.Clone()
	ledger.SortByDateDesc()
	return &Session{
		id:     id,
		ledger: ledger,
		budget: core.DefaultBudget(ledger, core.DateOf(timeNow())),
	}
}
