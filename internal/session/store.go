package session

import (
	"context"
	"sync"
	"time"

	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/flow"
)

// Snapshot is the durable view of a wizard session. Suspension states
// are never persisted; flow.Restore maps them back to the confirmation
// step on load.
type Snapshot struct {
	State     flow.State   `json:"state"`
	Draft     domain.Draft `json:"draft"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Store interface {
	Save(ctx context.Context, id string, snap Snapshot) error
	// Load returns nil when the session is unknown or expired.
	Load(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots in process memory. Used in tests and when
// Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, id string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[id] = snap
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}
