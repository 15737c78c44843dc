// Package recordedevent tracks case notes that evidence a key worker session
// or entry, or a personal officer entry, mirrored from the case notes service.
package recordedevent

import (
	"time"

	"keyworker/pkg/domain"

	"github.com/google/uuid"
)

// Type distinguishes a session held from an entry made.
type Type string

const (
	TypeSession Type = "SESSION"
	TypeEntry   Type = "ENTRY"
)

// RecordedEvent is a mirrored case note of interest.
type RecordedEvent struct {
	ID               uuid.UUID
	CaseNoteID       string
	Policy           domain.Policy
	PersonIdentifier domain.PersonIdentifier
	PrisonCode       domain.PrisonCode
	Type             Type
	OccurredAt       time.Time
	StaffID          *domain.StaffID
	CreatedAt        time.Time
}

type noteKey struct {
	noteType, subType string
}

var classifications = map[noteKey]struct {
	policy domain.Policy
	kind   Type
}{
	{"KA", "KS"}:       {domain.PolicyKeyWorker, TypeSession},
	{"KA", "KE"}:       {domain.PolicyKeyWorker, TypeEntry},
	{"REPORTS", "POE"}: {domain.PolicyPersonalOfficer, TypeEntry},
}

// Classify maps a case note type and sub type to the policy and kind it
// evidences. ok is false for notes of no interest.
func Classify(noteType, subType string) (policy domain.Policy, kind Type, ok bool) {
	c, ok := classifications[noteKey{noteType, subType}]
	return c.policy, c.kind, ok
}

// TypeSubTypes lists the case note type/sub type pairs that evidence kind
// under policy.
func TypeSubTypes(policy domain.Policy, kind Type) (noteType string, subTypes []string) {
	for k, c := range classifications {
		if c.policy == policy && c.kind == kind {
			noteType = k.noteType
			subTypes = append(subTypes, k.subType)
		}
	}
	return noteType, subTypes
}
