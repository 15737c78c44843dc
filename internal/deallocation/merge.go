package deallocation

import (
	"context"
	"errors"
	"time"

	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/sentinel"
	"keyworker/pkg/requestcontext"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Merge reports that Removed was consolidated into Retained.
type Merge struct {
	Removed    domain.PersonIdentifier
	Retained   domain.PersonIdentifier
	OccurredAt time.Time
}

// MergeResult counts the rows relinked under each policy.
type MergeResult struct {
	Result
	Allocations    int64
	RecordedEvents int64
}

// ReconcileMerge relinks allocations and recorded events from the removed
// identifier to the retained one under every policy. Where both identifiers
// hold an active allocation at the same prison, the removed identifier's
// allocation is closed as DUP first so at most one stays active.
func (e *Engine) ReconcileMerge(ctx context.Context, m Merge) (result MergeResult, err error) {
	ctx, span := e.startSpan(ctx, "deallocation.merge", m.Retained)
	span.SetAttributes(attribute.String("removed_identifier", m.Removed.String()))
	defer func() { endSpan(span, result.Result, err) }()

	if m.Removed.IsNil() || m.Retained.IsNil() {
		return MergeResult{}, dErrors.New(dErrors.CodeInvalidInput, "merge requires both identifiers")
	}
	if m.Removed == m.Retained {
		return MergeResult{}, nil
	}
	if _, err := e.catalog.Lookup(referencedata.DeallocationDuplicate.Key()); err != nil {
		return MergeResult{}, err
	}
	at := eventTime(ctx, m.OccurredAt)

	results := make([]MergeResult, len(e.policies))
	errs := make([]error, len(e.policies))
	var g errgroup.Group
	for i, policy := range e.policies {
		g.Go(func() error {
			results[i], errs[i] = e.mergeForPolicy(ctx, policy, m, at)
			if errs[i] != nil {
				e.logger.ErrorContext(ctx, "merge failed",
					"policy", policy,
					"person_identifier", m.Retained,
					"removed_identifier", m.Removed,
					"error", errs[i],
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if errs[i] != nil {
			continue
		}
		result.Closed = append(result.Closed, r.Closed...)
		result.Allocations += r.Allocations
		result.RecordedEvents += r.RecordedEvents
		e.emit(ctx, audit.Event{
			Timestamp:        at,
			Action:           audit.ActionPrisonerMerged,
			Policy:           e.policies[i],
			PersonIdentifier: m.Retained,
			Reason:           "merged from " + m.Removed.String(),
			Actor:            requestcontext.SystemUsername,
		})
	}
	for _, c := range result.Closed {
		e.recordClosure(ctx, c)
	}
	e.logger.InfoContext(ctx, "prisoner merged",
		"person_identifier", m.Retained,
		"removed_identifier", m.Removed,
		"allocations", result.Allocations,
		"recorded_events", result.RecordedEvents,
	)
	return result, errors.Join(errs...)
}

func (e *Engine) mergeForPolicy(ctx context.Context, policy domain.Policy, m Merge, at time.Time) (MergeResult, error) {
	var out MergeResult
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		out = MergeResult{}
		removed, err := e.allocations.ListActive(ctx, policy, m.Removed)
		if err != nil {
			return err
		}
		retained, err := e.allocations.ListActive(ctx, policy, m.Retained)
		if err != nil {
			return err
		}
		heldAt := make(map[domain.PrisonCode]bool, len(retained))
		for _, a := range retained {
			heldAt[a.PrisonCode] = true
		}
		for _, a := range removed {
			if !heldAt[a.PrisonCode] {
				continue
			}
			err := e.allocations.Deallocate(ctx, a.ID, at, requestcontext.SystemUsername, referencedata.DeallocationDuplicate)
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out.Closed = append(out.Closed, Closure{
				AllocationID:     a.ID,
				Policy:           policy,
				PersonIdentifier: m.Removed,
				PrisonCode:       a.PrisonCode,
				Reason:           referencedata.DeallocationDuplicate,
				At:               at,
			})
		}
		if out.Allocations, err = e.allocations.ReassignPerson(ctx, policy, m.Removed, m.Retained); err != nil {
			return err
		}
		if out.RecordedEvents, err = e.events.ReassignPerson(ctx, policy, m.Removed, m.Retained); err != nil {
			return err
		}
		return nil
	})
	return out, err
}
