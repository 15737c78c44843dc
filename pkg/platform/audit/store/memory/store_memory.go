package memory

import (
	"context"
	"sync"

	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.PersonIdentifier][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.PersonIdentifier][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PersonIdentifier] = append(s.events[event.PersonIdentifier], event)
	return nil
}

func (s *InMemoryStore) ListByPerson(_ context.Context, person domain.PersonIdentifier) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[person]...), nil
}

func (s *InMemoryStore) DeletePerson(_ context.Context, person domain.PersonIdentifier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.events[person]))
	delete(s.events, person)
	return n, nil
}

// All returns every event in insertion order per person.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, evs := range s.events {
		out = append(out, evs...)
	}
	return out
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.PersonIdentifier][]audit.Event)
}
