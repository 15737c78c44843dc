package deallocation

import (
	"context"
	"time"

	"keyworker/internal/gateway"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
)

// ComplexityChange reports a new complexity of need level. An empty Level
// means the event did not carry it and the current level is fetched.
type ComplexityChange struct {
	PersonIdentifier domain.PersonIdentifier
	Level            gateway.ComplexityLevel
	Active           *bool
	OccurredAt       time.Time
}

// ReconcileComplexity closes every active allocation of a person whose
// complexity of need became HIGH.
func (e *Engine) ReconcileComplexity(ctx context.Context, c ComplexityChange) (result Result, err error) {
	ctx, span := e.startSpan(ctx, "deallocation.complexity", c.PersonIdentifier)
	defer func() { endSpan(span, result, err) }()

	level := gateway.ComplexityOfNeed{OffenderNo: c.PersonIdentifier.String(), Level: c.Level, Active: c.Active}
	if c.Level == "" {
		levels, err := e.complexity.Levels(ctx, []domain.PersonIdentifier{c.PersonIdentifier})
		if err != nil {
			return Result{}, err
		}
		var ok bool
		if level, ok = levels[c.PersonIdentifier]; !ok {
			return Result{}, nil
		}
	}
	if !level.IsHigh() {
		return Result{}, nil
	}
	return e.closeMatching(ctx, c.PersonIdentifier, anyPrison, referencedata.DeallocationChangeInComplexityOfNeed, eventTime(ctx, c.OccurredAt))
}
