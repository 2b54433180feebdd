package mask

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is a process local Mask.
type Memory struct {
	mu  sync.Mutex
	ids map[uuid.UUID]int
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[uuid.UUID]int)}
}

// Add counts nested marks of the same id so concurrent holders do not unmark each other.
func (m *Memory) Add(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id]++
	return nil
}

func (m *Memory) Remove(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids[id] <= 1 {
		delete(m.ids, id)
		return nil
	}
	m.ids[id]--
	return nil
}

func (m *Memory) Marked(_ context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	return ids, nil
}
