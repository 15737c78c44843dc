package deallocation

import (
	"context"

	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/requestcontext"
)

// ErasureResult counts the rows removed.
type ErasureResult struct {
	Allocations    int64
	RecordedEvents int64
	AuditEvents    int64
}

// Erase hard deletes every allocation, recorded event and audit event held
// for a person in a single unit of work. It is not a deallocation and
// records no reason. The telemetry event it emits does not name the person.
func (e *Engine) Erase(ctx context.Context, person domain.PersonIdentifier) (result ErasureResult, err error) {
	ctx, span := e.startSpan(ctx, "deallocation.erase", person)
	defer func() { endSpan(span, Result{}, err) }()

	if person.IsNil() {
		return ErasureResult{}, dErrors.New(dErrors.CodeInvalidInput, "person identifier is required")
	}
	err = e.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if result.Allocations, err = e.allocations.DeletePerson(ctx, person); err != nil {
			return err
		}
		if result.RecordedEvents, err = e.events.DeletePerson(ctx, person); err != nil {
			return err
		}
		if e.audit == nil {
			return nil
		}
		result.AuditEvents, err = e.audit.DeletePerson(ctx, person)
		return err
	})
	if err != nil {
		return ErasureResult{}, err
	}
	e.emit(ctx, audit.Event{
		Action: audit.ActionPrisonerDeleted,
		Actor:  requestcontext.SystemUsername,
	})
	e.logger.InfoContext(ctx, "prisoner data erased",
		"allocations", result.Allocations,
		"recorded_events", result.RecordedEvents,
		"audit_events", result.AuditEvents,
	)
	return result, nil
}
