package prisonconfig

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document loaded at startup:
//
//	prisons:
//	  - code: MDI
//	    policy: KEY_WORKER
//	    enabled: true
//	    hasPrisonersWithHighComplexity: true
//	staff:
//	  - staffId: 4821
//	    policy: KEY_WORKER
//	    status: INACTIVE
type Seed struct {
	Prisons []PrisonSeed `yaml:"prisons"`
	Staff   []StaffSeed  `yaml:"staff"`
}

type PrisonSeed struct {
	Code                           string `yaml:"code"`
	Policy                         string `yaml:"policy"`
	Enabled                        bool   `yaml:"enabled"`
	HasPrisonersWithHighComplexity bool   `yaml:"hasPrisonersWithHighComplexity"`
	AllowAutoAllocation            bool   `yaml:"allowAutoAllocation"`
	Capacity                       int    `yaml:"capacity"`
}

type StaffSeed struct {
	StaffID  int64  `yaml:"staffId"`
	Policy   string `yaml:"policy"`
	Status   string `yaml:"status"`
	Capacity int    `yaml:"capacity"`
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if len(bytes.TrimSpace(data)) == 0 {
		return &seed, nil
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("prison config: decode seed: %w", err)
	}
	if _, _, err := seed.resolve(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadSeedFile reads a seed document from disk.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prison config: read %s: %w", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("prison config: %s: %w", path, err)
	}
	return seed, nil
}

func (s *Seed) resolve() ([]PrisonConfig, []StaffConfig, error) {
	prisons := make([]PrisonConfig, 0, len(s.Prisons))
	for i, p := range s.Prisons {
		code, err := domain.ParsePrisonCode(p.Code)
		if err != nil {
			return nil, nil, fmt.Errorf("prisons[%d]: %w", i, err)
		}
		policy, err := domain.ParsePolicy(p.Policy)
		if err != nil {
			return nil, nil, fmt.Errorf("prisons[%d]: %w", i, err)
		}
		cfg := Default(code, policy)
		cfg.Enabled = p.Enabled
		cfg.HasPrisonersWithHighComplexity = p.HasPrisonersWithHighComplexity
		cfg.AllowAutoAllocation = p.AllowAutoAllocation
		if p.Capacity > 0 {
			cfg.Capacity = p.Capacity
		}
		prisons = append(prisons, cfg)
	}

	staff := make([]StaffConfig, 0, len(s.Staff))
	for i, st := range s.Staff {
		if st.StaffID <= 0 {
			return nil, nil, fmt.Errorf("staff[%d]: invalid staff id", i)
		}
		policy, err := domain.ParsePolicy(st.Policy)
		if err != nil {
			return nil, nil, fmt.Errorf("staff[%d]: %w", i, err)
		}
		status, err := referencedata.ParseStaffStatus(st.Status)
		if err != nil {
			return nil, nil, fmt.Errorf("staff[%d]: %w", i, err)
		}
		staff = append(staff, StaffConfig{
			StaffID:  domain.StaffID(st.StaffID),
			Policy:   policy,
			Status:   status,
			Capacity: st.Capacity,
		})
	}
	return prisons, staff, nil
}

// Writer persists configuration.
type Writer interface {
	SavePrison(ctx context.Context, cfg PrisonConfig) error
	SaveStaff(ctx context.Context, cfg StaffConfig) error
}

// Apply writes every seeded row, replacing what is stored for the same key.
func (s *Seed) Apply(ctx context.Context, w Writer) error {
	prisons, staff, err := s.resolve()
	if err != nil {
		return err
	}
	for _, p := range prisons {
		if err := w.SavePrison(ctx, p); err != nil {
			return fmt.Errorf("seed prison %s: %w", p.PrisonCode, err)
		}
	}
	for _, st := range staff {
		if err := w.SaveStaff(ctx, st); err != nil {
			return fmt.Errorf("seed staff %d: %w", st.StaffID, err)
		}
	}
	return nil
}
