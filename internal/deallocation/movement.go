package deallocation

import (
	"context"
	"time"

	"keyworker/internal/gateway"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"

	"go.opentelemetry.io/otel/attribute"
)

// Movement is an external movement as reported by a domain event. When the
// direction or type is missing the engine fetches the movement by booking id
// and sequence.
type Movement struct {
	PersonIdentifier domain.PersonIdentifier
	BookingID        int64
	Sequence         int
	Direction        string
	MovementType     string
	FromAgency       domain.PrisonCode
	ToAgency         domain.PrisonCode
	OccurredAt       time.Time
}

// decision is the outcome of evaluating a movement.
type decision struct {
	reason referencedata.DeallocationReason
	sel    selector
}

// ReconcileMovement closes allocations a release or transfer ends.
//
// A release closes every active allocation. A transfer out closes
// allocations at the prison left, but only when the destination is a
// different registered prison. An admission into a registered prison closes
// allocations held at any other prison. Anything else is a no-op.
func (e *Engine) ReconcileMovement(ctx context.Context, m Movement) (result Result, err error) {
	ctx, span := e.startSpan(ctx, "deallocation.movement", m.PersonIdentifier)
	defer func() { endSpan(span, result, err) }()

	m, ok, err := e.completeMovement(ctx, m)
	if err != nil || !ok {
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("direction", m.Direction),
		attribute.String("movement_type", m.MovementType),
	)

	d, ok, err := e.decideMovement(ctx, m)
	if err != nil || !ok {
		return Result{}, err
	}
	return e.closeMatching(ctx, m.PersonIdentifier, d.sel, d.reason, eventTime(ctx, m.OccurredAt))
}

func (e *Engine) completeMovement(ctx context.Context, m Movement) (Movement, bool, error) {
	if m.Direction != "" && m.MovementType != "" {
		return m, true, nil
	}
	if m.BookingID == 0 || e.movements == nil {
		e.logger.WarnContext(ctx, "movement without details ignored", "person_identifier", m.PersonIdentifier)
		return m, false, nil
	}
	fetched, err := e.movements.Movement(ctx, m.BookingID, m.Sequence)
	if err != nil {
		return m, false, err
	}
	if fetched == nil {
		e.logger.WarnContext(ctx, "movement not found",
			"person_identifier", m.PersonIdentifier,
			"booking_id", m.BookingID,
			"movement_seq", m.Sequence,
		)
		return m, false, nil
	}
	m.Direction = fetched.DirectionCode
	m.MovementType = fetched.MovementType
	if m.FromAgency.IsNil() {
		m.FromAgency = domain.PrisonCode(fetched.FromAgency)
	}
	if m.ToAgency.IsNil() {
		m.ToAgency = domain.PrisonCode(fetched.ToAgency)
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = fetched.MovementTime.Time
	}
	if m.PersonIdentifier.IsNil() {
		m.PersonIdentifier = domain.PersonIdentifier(fetched.OffenderNo)
	}
	return m, true, nil
}

func (e *Engine) decideMovement(ctx context.Context, m Movement) (decision, bool, error) {
	switch {
	case m.Direction == gateway.DirectionOut && m.MovementType == gateway.MovementRelease:
		return decision{referencedata.DeallocationReleased, anyPrison}, true, nil

	case m.Direction == gateway.DirectionOut && m.MovementType == gateway.MovementTransfer:
		if m.ToAgency.IsNil() || m.ToAgency == m.FromAgency {
			return decision{}, false, nil
		}
		isPrison, err := e.prisons.IsPrison(ctx, m.ToAgency)
		if err != nil || !isPrison {
			return decision{}, false, err
		}
		if m.FromAgency.IsNil() {
			return decision{referencedata.DeallocationTransfer, notAtPrison(m.ToAgency)}, true, nil
		}
		return decision{referencedata.DeallocationTransfer, atPrison(m.FromAgency)}, true, nil

	case m.Direction == gateway.DirectionIn && m.MovementType == gateway.MovementAdmission:
		if m.ToAgency.IsNil() {
			return decision{}, false, nil
		}
		isPrison, err := e.prisons.IsPrison(ctx, m.ToAgency)
		if err != nil || !isPrison {
			return decision{}, false, err
		}
		return decision{referencedata.DeallocationTransfer, notAtPrison(m.ToAgency)}, true, nil
	}
	return decision{}, false, nil
}
