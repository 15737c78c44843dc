package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"keyworker/internal/recordedevent"
	"keyworker/pkg/domain"
)

type caseNoteKey struct {
	policy     domain.Policy
	caseNoteID string
}

// InMemory keeps recorded events keyed by (policy, case note id).
type InMemory struct {
	mu     sync.RWMutex
	events map[caseNoteKey]*recordedevent.RecordedEvent
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[caseNoteKey]*recordedevent.RecordedEvent)}
}

func (s *InMemory) Upsert(_ context.Context, e *recordedevent.RecordedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := caseNoteKey{e.Policy, e.CaseNoteID}
	c := *e
	if existing, ok := s.events[k]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	s.events[k] = &c
	return nil
}

func (s *InMemory) DeleteByCaseNote(_ context.Context, caseNoteID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.events {
		if k.caseNoteID == caseNoteID {
			delete(s.events, k)
			n++
		}
	}
	return n, nil
}

func (s *InMemory) ListForPersons(_ context.Context, policy domain.Policy, persons []domain.PersonIdentifier, from, to time.Time) ([]*recordedevent.RecordedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*recordedevent.RecordedEvent
	for _, e := range s.events {
		if e.Policy == policy && slices.Contains(persons, e.PersonIdentifier) &&
			!e.OccurredAt.Before(from) && e.OccurredAt.Before(to) {
			c := *e
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *recordedevent.RecordedEvent) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out, nil
}

func (s *InMemory) ReassignPerson(_ context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.Policy == policy && e.PersonIdentifier == from {
			e.PersonIdentifier = to
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeletePerson(_ context.Context, person domain.PersonIdentifier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, e := range s.events {
		if e.PersonIdentifier == person {
			delete(s.events, k)
			n++
		}
	}
	return n, nil
}
