package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/fittrack/internal/metrics"
)

// Manager keeps the live sessions of a process, keyed by session id.
type Manager struct {
	deps    Deps
	metrics *metrics.Manager

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewManager creates a Manager that starts every session with deps.
// m may be nil.
func NewManager(deps Deps, m *metrics.Manager) *Manager {
	return &Manager{deps: deps, metrics: m, sessions: make(map[string]*Controller)}
}

// Start begins a session and registers it.
func (m *Manager) Start(ctx context.Context, p Params) (*Controller, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	c, err := Start(ctx, m.deps, p)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.gaugeLocked()
	m.mu.Unlock()
	return c, nil
}

// Get returns a registered session.
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	return c, ok
}

// Close tears down and forgets a session. Returns false if it was unknown.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.gaugeLocked()
	m.mu.Unlock()
	if ok {
		c.Close()
	}
	return ok
}

// CloseAll tears down every session and waits for their in-flight saves.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Controller)
	m.gaugeLocked()
	m.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	for _, c := range all {
		c.Wait()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) gaugeLocked() {
	if m.metrics != nil {
		m.metrics.GaugeActiveSessions.Set(float64(len(m.sessions)))
	}
}
