package audit

import (
	"context"
	"time"

	"keyworker/pkg/domain"
)

// Action names a telemetry event. Values are stable because downstream
// dashboards group on them.
type Action string

const (
	ActionAllocationCreated   Action = "allocation_created"
	ActionPrisonerDeallocated Action = "prisoner_deallocated"
	ActionPrisonerMerged      Action = "prisoner_merged"
	ActionPrisonerDeleted     Action = "prisoner_deleted"
	ActionStatisticsRecorded  Action = "prison_statistics_recorded"
	ActionUnrecognisedEvent   Action = "unrecognised_event"
	ActionSubjectAccessServed Action = "subject_access_request_served"
)

// Event is a transport-agnostic record of something the service did to a
// prisoner's allocations. Fields that do not apply stay zero.
type Event struct {
	Timestamp        time.Time
	Action           Action
	Policy           domain.Policy
	PersonIdentifier domain.PersonIdentifier
	PrisonCode       domain.PrisonCode
	Reason           string
	// Actor is the username responsible. System-triggered work uses SYS.
	Actor     string
	RequestID string
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPerson(ctx context.Context, person domain.PersonIdentifier) ([]Event, error)
	// DeletePerson removes every event recorded for person.
	DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error)
}
