package models

import (
	"time"

	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"

	"github.com/google/uuid"
)

// Allocation assigns one staff member to one prisoner at one prison under one
// policy. A nil DeallocatedAt means the allocation is active.
type Allocation struct {
	ID               uuid.UUID
	Policy           domain.Policy
	PersonIdentifier domain.PersonIdentifier
	PrisonCode       domain.PrisonCode
	StaffID          domain.StaffID
	AllocatedAt      time.Time
	AllocatedBy      string
	AllocationReason referencedata.AllocationReason

	DeallocatedAt      *time.Time
	DeallocatedBy      string
	DeallocationReason referencedata.DeallocationReason
}

// NewAllocation builds an active allocation.
func NewAllocation(
	policy domain.Policy,
	person domain.PersonIdentifier,
	prison domain.PrisonCode,
	staff domain.StaffID,
	at time.Time,
	by string,
	reason referencedata.AllocationReason,
) (*Allocation, error) {
	if !policy.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid policy")
	}
	if person.IsNil() || prison.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "person identifier and prison code are required")
	}
	if staff <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "staff id must be positive")
	}
	return &Allocation{
		ID:               uuid.New(),
		Policy:           policy,
		PersonIdentifier: person,
		PrisonCode:       prison,
		StaffID:          staff,
		AllocatedAt:      at,
		AllocatedBy:      by,
		AllocationReason: reason,
	}, nil
}

// IsActive reports whether the allocation is still open.
func (a *Allocation) IsActive() bool {
	return a.DeallocatedAt == nil
}

// Deallocate closes the allocation. Closing an already-closed allocation is
// an invalid state transition.
func (a *Allocation) Deallocate(at time.Time, by string, reason referencedata.DeallocationReason) error {
	if !a.IsActive() {
		return dErrors.New(dErrors.CodeConflict, "allocation already deallocated")
	}
	a.DeallocatedAt = &at
	a.DeallocatedBy = by
	a.DeallocationReason = reason
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (a *Allocation) Clone() *Allocation {
	c := *a
	if a.DeallocatedAt != nil {
		t := *a.DeallocatedAt
		c.DeallocatedAt = &t
	}
	return &c
}
