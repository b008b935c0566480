package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/flow"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// Manager maps session ids to live controllers. Controllers stay in
// process memory (the re-entrancy guard is per instance); the store
// keeps a durable snapshot so an idle or restarted session can resume
// where it left off.
type Manager struct {
	mu    sync.Mutex
	live  map[string]*flow.Controller
	store Store
	deps  flow.Deps
}

func NewManager(store Store, deps flow.Deps) *Manager {
	return &Manager{
		live:  make(map[string]*flow.Controller),
		store: store,
		deps:  deps,
	}
}

// Start opens a new wizard session with an empty draft.
func (m *Manager) Start(ctx context.Context) (string, *flow.Controller, error) {
	id := uuid.NewString()
	c := flow.New(m.deps)

	m.mu.Lock()
	m.live[id] = c
	m.mu.Unlock()

	if err := m.persist(ctx, id, c); err != nil {
		return "", nil, fmt.Errorf("persist new session: %w", err)
	}

	logger.InfoContext(ctx, "Booking session started", "session_id", id)
	return id, c, nil
}

// Get resolves a session to its controller, rebuilding it from the
// store if this process has not seen it yet.
func (m *Manager) Get(ctx context.Context, id string) (*flow.Controller, error) {
	m.mu.Lock()
	if c, ok := m.live[id]; ok {
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if snap == nil {
		return nil, domain.ErrSessionNotFound
	}

	c := flow.Restore(snap.State, snap.Draft, m.deps)

	m.mu.Lock()
	// Another request may have restored it first; keep the winner so the
	// re-entrancy guard stays on one instance.
	if existing, ok := m.live[id]; ok {
		c = existing
	} else {
		m.live[id] = c
	}
	m.mu.Unlock()

	return c, nil
}

// Persist writes the session's current snapshot. Suspension states are
// skipped; they resolve within the request that entered them.
func (m *Manager) Persist(ctx context.Context, id string, c *flow.Controller) {
	if err := m.persist(ctx, id, c); err != nil {
		logger.ErrorContext(ctx, "Failed to persist session", "error", err, "session_id", id)
	}
}

func (m *Manager) persist(ctx context.Context, id string, c *flow.Controller) error {
	state := c.State()
	if state == flow.StateAwaitingPayment || state == flow.StateSubmitting {
		return nil
	}
	return m.store.Save(ctx, id, Snapshot{
		State:     state,
		Draft:     c.Draft(),
		UpdatedAt: time.Now(),
	})
}

// End drops a session from memory and the store.
func (m *Manager) End(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		logger.ErrorContext(ctx, "Failed to delete session", "error", err, "session_id", id)
	}
}
