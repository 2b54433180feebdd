// Package relationtest provides in-memory repositories for service tests.
package relationtest

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	"github.com/Ramsey-B/verzoeken/pkg/models"
)

// Memory is an in-memory relation repository. DeleteErr makes Delete fail.
type Memory[T any] struct {
	mu        sync.Mutex
	acc       relation.Accessors[T]
	items     []T
	DeleteErr error
}

func NewMemory[T any](acc relation.Accessors[T]) *Memory[T] {
	return &Memory[T]{acc: acc}
}

func (m *Memory[T]) Create(_ context.Context, item T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return &item, nil
}

func (m *Memory[T]) Get(_ context.Context, id uuid.UUID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if m.acc.UUID(item) == id {
			found := item
			return &found, nil
		}
	}
	return nil, httperror.NewHTTPError(http.StatusNotFound, "not found")
}

func (m *Memory[T]) List(_ context.Context, filter models.RelationFilter) (models.PageResult[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	excluded := map[uuid.UUID]bool{}
	for _, id := range filter.Exclude {
		excluded[id] = true
	}

	items := []T{}
	for _, item := range m.items {
		if excluded[m.acc.UUID(item)] {
			continue
		}
		if filter.Verzoek != nil && m.acc.Verzoek(item) != *filter.Verzoek {
			continue
		}
		items = append(items, item)
	}
	return models.PageResult[T]{Count: len(items), Items: items}, nil
}

func (m *Memory[T]) ListByVerzoeken(_ context.Context, verzoeken []uuid.UUID) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range verzoeken {
		wanted[id] = true
	}

	items := []T{}
	for _, item := range m.items {
		if wanted[m.acc.Verzoek(item)] {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *Memory[T]) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, item := range m.items {
		if m.acc.UUID(item) == id {
			m.items = append(m.items[:i:i], m.items[i+1:]...)
			return nil
		}
	}
	return httperror.NewHTTPError(http.StatusNotFound, "not found")
}

// DeleteWhere removes every item of the given verzoeken, the way the foreign key cascade does.
func (m *Memory[T]) DeleteWhere(verzoeken ...uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range verzoeken {
		wanted[id] = true
	}
	kept := m.items[:0]
	for _, item := range m.items {
		if !wanted[m.acc.Verzoek(item)] {
			kept = append(kept, item)
		}
	}
	m.items = kept
}

func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Verzoeken is an in-memory verzoek reader.
type Verzoeken struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Verzoek
}

func NewVerzoeken(items ...models.Verzoek) *Verzoeken {
	v := &Verzoeken{items: map[uuid.UUID]models.Verzoek{}}
	for _, item := range items {
		v.items[item.UUID] = item
	}
	return v
}

func (v *Verzoeken) Get(_ context.Context, id uuid.UUID) (*models.Verzoek, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.items[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}
	return &item, nil
}

// Notification is one recorded Notify call.
type Notification struct {
	Actie       string
	Resource    string
	ResourceURL string
	HoofdObject string
}

type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *Notifier) Notify(_ context.Context, actie, resource, resourceURL, hoofdObject, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{Actie: actie, Resource: resource, ResourceURL: resourceURL, HoofdObject: hoofdObject})
}

var ErrUnavailable = errors.New("database unavailable")
