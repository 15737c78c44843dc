package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"keyworker/internal/prisonconfig"
	"keyworker/pkg/domain"
)

type prisonKey struct {
	prison domain.PrisonCode
	policy domain.Policy
}

type staffKey struct {
	staff  domain.StaffID
	policy domain.Policy
}

// InMemory is a configuration store for tests and database-less runs.
type InMemory struct {
	mu      sync.RWMutex
	prisons map[prisonKey]prisonconfig.PrisonConfig
	staff   map[staffKey]prisonconfig.StaffConfig
}

func NewInMemory() *InMemory {
	return &InMemory{
		prisons: make(map[prisonKey]prisonconfig.PrisonConfig),
		staff:   make(map[staffKey]prisonconfig.StaffConfig),
	}
}

func (s *InMemory) SavePrison(_ context.Context, cfg prisonconfig.PrisonConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prisons[prisonKey{cfg.PrisonCode, cfg.Policy}] = cfg
	return nil
}

func (s *InMemory) SaveStaff(_ context.Context, cfg prisonconfig.StaffConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[staffKey{cfg.StaffID, cfg.Policy}] = cfg
	return nil
}

// FindPrison returns the stored configuration or the disabled default.
func (s *InMemory) FindPrison(_ context.Context, prison domain.PrisonCode, policy domain.Policy) (prisonconfig.PrisonConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.prisons[prisonKey{prison, policy}]; ok {
		return cfg, nil
	}
	return prisonconfig.Default(prison, policy), nil
}

// ListEnabled returns enabled prisons under policy ordered by code.
func (s *InMemory) ListEnabled(_ context.Context, policy domain.Policy) ([]prisonconfig.PrisonConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []prisonconfig.PrisonConfig
	for _, cfg := range s.prisons {
		if cfg.Policy == policy && cfg.Enabled {
			out = append(out, cfg)
		}
	}
	slices.SortFunc(out, func(a, b prisonconfig.PrisonConfig) int {
		return strings.Compare(string(a.PrisonCode), string(b.PrisonCode))
	})
	return out, nil
}

// ListStaff returns stored configuration for the given staff. Staff with no
// row are absent from the map.
func (s *InMemory) ListStaff(_ context.Context, policy domain.Policy, ids []domain.StaffID) (map[domain.StaffID]prisonconfig.StaffConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.StaffID]prisonconfig.StaffConfig)
	for _, id := range ids {
		if cfg, ok := s.staff[staffKey{id, policy}]; ok {
			out[id] = cfg
		}
	}
	return out, nil
}
