// Package store persists allocations. Both implementations enforce at most
// one active allocation per (policy, person, prison).
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"keyworker/internal/allocation/models"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	"keyworker/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// InMemory keeps allocations in a map. Suitable for tests and local runs
// without DATABASE_URL.
type InMemory struct {
	mu          sync.RWMutex
	allocations map[uuid.UUID]*models.Allocation
}

func NewInMemory() *InMemory {
	return &InMemory{allocations: make(map[uuid.UUID]*models.Allocation)}
}

func (s *InMemory) Create(_ context.Context, a *models.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.IsActive() {
		for _, existing := range s.allocations {
			if existing.IsActive() &&
				existing.Policy == a.Policy &&
				existing.PersonIdentifier == a.PersonIdentifier &&
				existing.PrisonCode == a.PrisonCode {
				return sentinel.ErrConflict
			}
		}
	}
	s.allocations[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.allocations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemory) ListActive(_ context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	return s.filter(func(a *models.Allocation) bool {
		return a.IsActive() && a.Policy == policy && a.PersonIdentifier == person
	}), nil
}

func (s *InMemory) Deallocate(_ context.Context, id uuid.UUID, at time.Time, by string, reason referencedata.DeallocationReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.allocations[id]
	if !ok || !a.IsActive() {
		return sentinel.ErrNotFound
	}
	return a.Deallocate(at, by, reason)
}

func (s *InMemory) ListByPerson(_ context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	out := s.filter(func(a *models.Allocation) bool {
		return a.Policy == policy && a.PersonIdentifier == person
	})
	slices.Reverse(out)
	return out, nil
}

func (s *InMemory) ListForPersons(_ context.Context, policy domain.Policy, prison domain.PrisonCode, persons []domain.PersonIdentifier) ([]*models.Allocation, error) {
	return s.filter(func(a *models.Allocation) bool {
		return a.Policy == policy && a.PrisonCode == prison && slices.Contains(persons, a.PersonIdentifier)
	}), nil
}

func (s *InMemory) ListForSubjectAccess(_ context.Context, person domain.PersonIdentifier, from, to *time.Time) ([]*models.Allocation, error) {
	return s.filter(func(a *models.Allocation) bool {
		return a.PersonIdentifier == person && withinWindow(a.AllocatedAt, from, to)
	}), nil
}

func (s *InMemory) ReassignPerson(_ context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.allocations {
		if a.Policy == policy && a.PersonIdentifier == from {
			a.PersonIdentifier = to
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeletePerson(_ context.Context, person domain.PersonIdentifier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.allocations {
		if a.PersonIdentifier == person {
			delete(s.allocations, id)
			n++
		}
	}
	return n, nil
}

// filter returns clones ordered by allocation time, oldest first.
func (s *InMemory) filter(keep func(*models.Allocation) bool) []*models.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Allocation
	for _, a := range s.allocations {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	slices.SortFunc(out, func(x, y *models.Allocation) int {
		return x.AllocatedAt.Compare(y.AllocatedAt)
	})
	return out
}

func withinWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
