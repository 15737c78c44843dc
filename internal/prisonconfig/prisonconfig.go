// Package prisonconfig holds per-prison and per-staff settings for each
// policy. A prison with no stored configuration is disabled.
package prisonconfig

import (
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
)

// PrisonConfig is one prison's settings under one policy.
type PrisonConfig struct {
	PrisonCode                     domain.PrisonCode
	Policy                         domain.Policy
	Enabled                        bool
	HasPrisonersWithHighComplexity bool
	AllowAutoAllocation            bool
	Capacity                       int
}

// Default returns the configuration used when none is stored.
func Default(prison domain.PrisonCode, policy domain.Policy) PrisonConfig {
	return PrisonConfig{PrisonCode: prison, Policy: policy, Capacity: 6}
}

// StaffConfig is one staff member's status under one policy.
type StaffConfig struct {
	StaffID  domain.StaffID
	Policy   domain.Policy
	Status   referencedata.StaffStatus
	Capacity int
}
