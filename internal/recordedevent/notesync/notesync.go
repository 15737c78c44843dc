// Package notesync mirrors case notes of interest into recorded events.
package notesync

import (
	"context"
	"log/slog"

	"keyworker/internal/gateway"
	"keyworker/internal/recordedevent"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	"keyworker/pkg/platform/tx"
	"keyworker/pkg/requestcontext"

	"github.com/google/uuid"
)

// CaseNotes reads a single case note; nil means it no longer exists.
type CaseNotes interface {
	Get(ctx context.Context, person domain.PersonIdentifier, id string) (*gateway.CaseNote, error)
}

// Store is the recorded event persistence port used by the sync.
type Store interface {
	Upsert(ctx context.Context, e *recordedevent.RecordedEvent) error
	DeleteByCaseNote(ctx context.Context, caseNoteID string) (int64, error)
}

type Service struct {
	notes  CaseNotes
	store  Store
	tx     tx.Runner
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(notes CaseNotes, store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		notes:  notes,
		store:  store,
		tx:     runner,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome reports what a sync did with the note.
type Outcome string

const (
	OutcomeRecorded Outcome = "recorded"
	OutcomeRemoved  Outcome = "removed"
	OutcomeIgnored  Outcome = "ignored"
)

// Sync refreshes the recorded event for a created, updated or moved case
// note. Notes that are gone, or no longer of interest, are removed.
func (s *Service) Sync(ctx context.Context, person domain.PersonIdentifier, caseNoteID string) (Outcome, error) {
	if caseNoteID == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "case note id is required")
	}
	note, err := s.notes.Get(ctx, person, caseNoteID)
	if err != nil {
		return "", err
	}
	if note == nil {
		return s.Remove(ctx, caseNoteID)
	}
	policy, kind, ok := recordedevent.Classify(note.Type, note.SubType)
	if !ok {
		return s.Remove(ctx, caseNoteID)
	}

	event := &recordedevent.RecordedEvent{
		ID:               uuid.New(),
		CaseNoteID:       caseNoteID,
		Policy:           policy,
		PersonIdentifier: domain.PersonIdentifier(note.PersonIdentifier),
		PrisonCode:       domain.PrisonCode(note.LocationID),
		Type:             kind,
		OccurredAt:       note.OccurredAt.Time,
		CreatedAt:        requestcontext.Now(ctx),
	}
	if event.PersonIdentifier.IsNil() {
		event.PersonIdentifier = person
	}
	if staffID, err := domain.ParseStaffID(note.AuthorUserID); err == nil {
		event.StaffID = &staffID
	}

	// A note whose type changed may have been recorded under the other policy.
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.DeleteByCaseNote(ctx, caseNoteID); err != nil {
			return err
		}
		return s.store.Upsert(ctx, event)
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record case note")
	}
	s.logger.InfoContext(ctx, "case note recorded",
		"case_note_id", caseNoteID,
		"policy", policy,
		"person_identifier", event.PersonIdentifier,
		"type", kind,
	)
	return OutcomeRecorded, nil
}

// Remove deletes any recorded event for the case note.
func (s *Service) Remove(ctx context.Context, caseNoteID string) (Outcome, error) {
	n, err := s.store.DeleteByCaseNote(ctx, caseNoteID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove case note")
	}
	if n == 0 {
		return OutcomeIgnored, nil
	}
	s.logger.InfoContext(ctx, "case note removed", "case_note_id", caseNoteID)
	return OutcomeRemoved, nil
}
