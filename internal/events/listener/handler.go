// Package listener turns consumed domain events into engine, sync and
// statistics calls.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keyworker/internal/deallocation"
	"keyworker/internal/events"
	"keyworker/internal/platform/kafka/consumer"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/recordedevent/notesync"
	"keyworker/internal/statistics/calculator"
	statmodels "keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/requestcontext"
)

// Engine reconciles allocations.
type Engine interface {
	ReconcileMovement(ctx context.Context, m deallocation.Movement) (deallocation.Result, error)
	ReconcileComplexity(ctx context.Context, c deallocation.ComplexityChange) (deallocation.Result, error)
	ReconcileMerge(ctx context.Context, m deallocation.Merge) (deallocation.MergeResult, error)
	Erase(ctx context.Context, person domain.PersonIdentifier) (deallocation.ErasureResult, error)
}

// NoteSync mirrors case notes.
type NoteSync interface {
	Sync(ctx context.Context, person domain.PersonIdentifier, caseNoteID string) (notesync.Outcome, error)
	Remove(ctx context.Context, caseNoteID string) (notesync.Outcome, error)
}

// Calculator records prison statistics.
type Calculator interface {
	Calculate(ctx context.Context, prison domain.PrisonCode, date time.Time, policy domain.Policy) (*statmodels.PrisonStatistic, calculator.Outcome, error)
}

// Auditor records telemetry events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler decodes one domain event and runs it to completion. Errors are
// returned to the consumer, which dead-letters the message.
type Handler struct {
	engine     Engine
	notes      NoteSync
	calculator Calculator
	logger     *slog.Logger
	metrics    *metrics.Metrics
	auditor    Auditor
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(h *Handler) { h.auditor = a }
}

func NewHandler(engine Engine, notes NoteSync, calc Calculator, opts ...Option) *Handler {
	h := &Handler{
		engine:     engine,
		notes:      notes,
		calculator: calc,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	ev, err := events.Decode(msg.Value)
	if err != nil {
		h.metrics.IncrementDomainEvent("unknown", "malformed")
		h.logger.ErrorContext(ctx, "malformed domain event",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return err
	}

	ctx = requestcontext.WithUsername(ctx, requestcontext.SystemUsername)
	if id := msg.Headers["x-request-id"]; id != "" {
		ctx = requestcontext.WithRequestID(ctx, id)
	}

	if err := h.dispatch(ctx, ev); err != nil {
		h.metrics.IncrementDomainEvent(ev.EventType(), "failed")
		h.logger.ErrorContext(ctx, "domain event failed",
			"event_type", ev.EventType(),
			"error", err,
		)
		return err
	}
	if _, ok := ev.(events.Unrecognised); !ok {
		h.metrics.IncrementDomainEvent(ev.EventType(), "processed")
	}
	return nil
}

func (h *Handler) dispatch(ctx context.Context, ev events.Event) error {
	switch e := ev.(type) {
	case events.MovementRecorded:
		_, err := h.engine.ReconcileMovement(ctx, deallocation.Movement{
			PersonIdentifier: e.PersonIdentifier,
			BookingID:        e.BookingID,
			Sequence:         e.MovementSeq,
			Direction:        e.Direction,
			MovementType:     e.MovementType,
			FromAgency:       e.FromAgency,
			ToAgency:         e.ToAgency,
			OccurredAt:       e.OccurredAt,
		})
		return err

	case events.ComplexityChanged:
		_, err := h.engine.ReconcileComplexity(ctx, deallocation.ComplexityChange{
			PersonIdentifier: e.PersonIdentifier,
			Level:            e.Level,
			Active:           e.Active,
			OccurredAt:       e.OccurredAt,
		})
		return err

	case events.PrisonerMerged:
		_, err := h.engine.ReconcileMerge(ctx, deallocation.Merge{
			Removed:    e.Removed,
			Retained:   e.Retained,
			OccurredAt: e.OccurredAt,
		})
		return err

	case events.PrisonerDeleted:
		_, err := h.engine.Erase(ctx, e.PersonIdentifier)
		return err

	case events.CaseNoteChanged:
		if e.Deleted() {
			_, err := h.notes.Remove(ctx, e.CaseNoteID)
			return err
		}
		_, err := h.notes.Sync(ctx, e.PersonIdentifier, e.CaseNoteID)
		return err

	case events.CalculatePrisonStats:
		_, outcome, err := h.calculator.Calculate(ctx, e.PrisonCode, e.Date, e.Policy)
		if err == nil {
			h.logger.DebugContext(ctx, "statistics event handled",
				"prison_code", e.PrisonCode,
				"policy", e.Policy,
				"outcome", outcome,
			)
		}
		return err

	case events.Unrecognised:
		h.metrics.IncrementDomainEvent(e.Type, "unrecognised")
		h.logger.InfoContext(ctx, "unrecognised domain event", "event_type", e.Type)
		if h.auditor != nil {
			if err := h.auditor.Emit(ctx, audit.Event{
				Action:    audit.ActionUnrecognisedEvent,
				Reason:    e.Type,
				Actor:     requestcontext.SystemUsername,
				RequestID: requestcontext.RequestID(ctx),
			}); err != nil {
				h.logger.WarnContext(ctx, "failed to emit telemetry", "error", err)
			}
		}
		return nil
	}
	return fmt.Errorf("unhandled event %T", ev)
}
