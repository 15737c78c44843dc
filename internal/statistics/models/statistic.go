package models

import (
	"time"

	"keyworker/pkg/domain"

	"github.com/google/uuid"
)

// PrisonStatistic is the daily snapshot for one prison under one policy.
// It is written once and never updated.
type PrisonStatistic struct {
	ID                      uuid.UUID
	PrisonCode              domain.PrisonCode
	Policy                  domain.Policy
	Date                    time.Time
	TotalPrisoners          int
	HighComplexityPrisoners int
	EligiblePrisoners       int
	AssignedPrisoners       int
	NewAllocations          int
	EligibleStaff           int
	RecordedSessions        int
	RecordedEntries         int
	// Averages are nil when no recent resident contributed a value.
	AvgReceptionToAllocationDays    *int
	AvgReceptionToRecordedEventDays *int
	CreatedAt                       time.Time
	Prisoners                       []PrisonerStatistic
}

// PrisonerStatistic is one resident's row within a PrisonStatistic.
type PrisonerStatistic struct {
	PersonIdentifier domain.PersonIdentifier
	CellLocation     string
	// AllocationEligibilityDate is nil for residents excluded for high
	// complexity of need.
	AllocationEligibilityDate *time.Time
	HighComplexity            bool
	Allocated                 bool
	LastRecordedEventAt       *time.Time
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
