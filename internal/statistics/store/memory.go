package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	"keyworker/pkg/platform/sentinel"
)

type statKey struct {
	prison domain.PrisonCode
	policy domain.Policy
	date   time.Time
}

// InMemory keeps statistics keyed by (prison, policy, date).
type InMemory struct {
	mu    sync.RWMutex
	stats map[statKey]*models.PrisonStatistic
}

func NewInMemory() *InMemory {
	return &InMemory{stats: make(map[statKey]*models.PrisonStatistic)}
}

func (s *InMemory) Exists(_ context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.stats[statKey{prison, policy, models.Day(date)}]
	return ok, nil
}

// Save stores the statistic and its prisoner rows. A second statistic for
// the same key returns sentinel.ErrConflict.
func (s *InMemory) Save(_ context.Context, stat *models.PrisonStatistic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := statKey{stat.PrisonCode, stat.Policy, models.Day(stat.Date)}
	if _, ok := s.stats[k]; ok {
		return sentinel.ErrConflict
	}
	c := *stat
	c.Prisoners = slices.Clone(stat.Prisoners)
	s.stats[k] = &c
	return nil
}

// List returns statistics in [from, to] by date, without prisoner rows.
func (s *InMemory) List(_ context.Context, prison domain.PrisonCode, policy domain.Policy, from, to time.Time) ([]*models.PrisonStatistic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from, to = models.Day(from), models.Day(to)
	var out []*models.PrisonStatistic
	for k, stat := range s.stats {
		if k.prison != prison || k.policy != policy || k.date.Before(from) || k.date.After(to) {
			continue
		}
		c := *stat
		c.Prisoners = nil
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.PrisonStatistic) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// Prisoners returns the prisoner rows of one statistic.
func (s *InMemory) Prisoners(_ context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) ([]models.PrisonerStatistic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stat, ok := s.stats[statKey{prison, policy, models.Day(date)}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(stat.Prisoners), nil
}
