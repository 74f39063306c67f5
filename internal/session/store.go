package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketpaline/internal/domain"
)

// Store persists session state. Update is an atomic read-modify-write: fn
// sees the current state and its changes are stored only when it returns nil.
type Store interface {
	Create(ctx context.Context, st *State) error
	Get(ctx context.Context, id uuid.UUID) (*State, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*State) error) (*State, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore keeps sessions for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*State
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[uuid.UUID]*State{}, now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[st.ID] = st.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*State) error) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = m.now()
	m.sessions[id] = next
	return next.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
