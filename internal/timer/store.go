package timer

import (
	"context"
	"sync"
)

// Store persists timer state per user. Load returns nil, nil when nothing is saved.
type Store interface {
	Load(ctx context.Context, userID string) (*State, error)
	Save(ctx context.Context, userID string, s *State) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore keeps state in process memory. It is used when redis is disabled.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = *s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}
