package notice

import (
	"context"
	"sync"

	domain "noticeboard/internal/domain/notice"
)

// MemoryStore is an in-process Store for tests and dry runs.
// LoadErr and SaveErr, when set, are returned instead of touching the data.
type MemoryStore struct {
	mu      sync.Mutex
	notices []domain.Notice
	saves   int

	LoadErr error
	SaveErr error
}

// NewMemoryStore creates a MemoryStore primed with a copy of initial.
func NewMemoryStore(initial ...domain.Notice) *MemoryStore {
	return &MemoryStore{notices: append([]domain.Notice{}, initial...)}
}

// Load returns a copy of the held collection.
func (m *MemoryStore) Load(_ context.Context) ([]domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]domain.Notice{}, m.notices...), nil
}

// Save replaces the held collection with a copy of notices.
func (m *MemoryStore) Save(_ context.Context, notices []domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.notices = append([]domain.Notice{}, notices...)
	m.saves++
	return nil
}

// Saves returns how many successful Save calls have been made.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
