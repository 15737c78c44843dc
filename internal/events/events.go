package events

import (
	"time"

	"keyworker/internal/gateway"
	"keyworker/pkg/domain"
)

// Event types consumed by the service.
const (
	TypeExternalMovement     = "prison-offender-events.prisoner.external-movement-recorded"
	TypePrisonerMerged       = "prison-offender-events.prisoner.merged"
	TypeBookingNumberChanged = "prison-offender-events.prisoner.booking-number-changed"
	TypeComplexityChanged    = "complexity-of-need.level.changed"
	TypeCaseNoteCreated      = "person.case-note.created"
	TypeCaseNoteUpdated      = "person.case-note.updated"
	TypeCaseNoteDeleted      = "person.case-note.deleted"
	TypeCaseNoteMoved        = "person.case-note.moved"
	TypeDeleteOffender       = "data-compliance.delete-offender"
	TypeCalculatePrisonStats = "keyworker-api.prison-statistics.calculate"
)

// Event is one decoded domain event. The set of implementations is closed;
// anything the decoder does not know becomes Unrecognised.
type Event interface {
	EventType() string
	isEvent()
}

// MovementRecorded is an external movement in or out of a prison.
type MovementRecorded struct {
	PersonIdentifier domain.PersonIdentifier
	BookingID        int64
	MovementSeq      int
	Direction        string
	MovementType     string
	FromAgency       domain.PrisonCode
	ToAgency         domain.PrisonCode
	OccurredAt       time.Time
}

// PrisonerMerged consolidates Removed into Retained.
type PrisonerMerged struct {
	Type       string
	Removed    domain.PersonIdentifier
	Retained   domain.PersonIdentifier
	OccurredAt time.Time
}

// ComplexityChanged reports a new complexity of need level.
type ComplexityChanged struct {
	PersonIdentifier domain.PersonIdentifier
	Level            gateway.ComplexityLevel
	Active           *bool
	OccurredAt       time.Time
}

// CaseNoteChanged reports a case note created, updated, moved or deleted.
type CaseNoteChanged struct {
	Type             string
	PersonIdentifier domain.PersonIdentifier
	CaseNoteID       string
	OccurredAt       time.Time
}

// Deleted reports whether the note was removed.
func (c CaseNoteChanged) Deleted() bool { return c.Type == TypeCaseNoteDeleted }

// PrisonerDeleted requests erasure of everything held about a person.
type PrisonerDeleted struct {
	PersonIdentifier domain.PersonIdentifier
	OccurredAt       time.Time
}

// CalculatePrisonStats asks for one prison's daily statistic.
type CalculatePrisonStats struct {
	PrisonCode domain.PrisonCode
	Policy     domain.Policy
	Date       time.Time
}

// Unrecognised is any event type the service does not handle.
type Unrecognised struct {
	Type string
}

func (MovementRecorded) EventType() string     { return TypeExternalMovement }
func (e PrisonerMerged) EventType() string     { return e.Type }
func (ComplexityChanged) EventType() string    { return TypeComplexityChanged }
func (e CaseNoteChanged) EventType() string    { return e.Type }
func (PrisonerDeleted) EventType() string      { return TypeDeleteOffender }
func (CalculatePrisonStats) EventType() string { return TypeCalculatePrisonStats }
func (e Unrecognised) EventType() string       { return e.Type }

func (MovementRecorded) isEvent()     {}
func (PrisonerMerged) isEvent()       {}
func (ComplexityChanged) isEvent()    {}
func (CaseNoteChanged) isEvent()      {}
func (PrisonerDeleted) isEvent()      {}
func (CalculatePrisonStats) isEvent() {}
func (Unrecognised) isEvent()         {}
