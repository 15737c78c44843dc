// Package deallocation reconciles allocations against prisoner movements,
// complexity of need changes, identifier merges and erasure requests.
//
// Each policy is reconciled in its own unit of work. A failure under one
// policy is reported but does not stop the other.
package deallocation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keyworker/internal/allocation/models"
	"keyworker/internal/gateway"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/sentinel"
	"keyworker/pkg/platform/tx"
	"keyworker/pkg/requestcontext"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "keyworker/deallocation"

// AllocationStore is the allocation persistence the engine mutates.
type AllocationStore interface {
	ListActive(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error)
	Deallocate(ctx context.Context, id uuid.UUID, at time.Time, by string, reason referencedata.DeallocationReason) error
	ReassignPerson(ctx context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error)
	DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error)
}

// RecordedEventStore is relinked on merge and erased on deletion.
type RecordedEventStore interface {
	ReassignPerson(ctx context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error)
	DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error)
}

// PrisonLookup reports whether an agency location is a prison.
type PrisonLookup interface {
	IsPrison(ctx context.Context, code domain.PrisonCode) (bool, error)
}

// Movements fetches a movement when the event does not carry its details.
type Movements interface {
	Movement(ctx context.Context, bookingID int64, sequence int) (*gateway.Movement, error)
}

// Complexity fetches current complexity of need levels.
type Complexity interface {
	Levels(ctx context.Context, persons []domain.PersonIdentifier) (map[domain.PersonIdentifier]gateway.ComplexityOfNeed, error)
}

// Auditor records telemetry events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditEraser removes a person's telemetry history.
type AuditEraser interface {
	DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error)
}

// Engine decides which active allocations an event closes.
type Engine struct {
	allocations AllocationStore
	events      RecordedEventStore
	tx          tx.Runner
	catalog     *referencedata.Catalog
	prisons     PrisonLookup
	movements   Movements
	complexity  Complexity
	audit       AuditEraser
	policies    []domain.Policy
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     Auditor
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// WithPolicies restricts reconciliation to the given policies.
func WithPolicies(policies ...domain.Policy) Option {
	return func(e *Engine) { e.policies = policies }
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Allocations    AllocationStore
	RecordedEvents RecordedEventStore
	Tx             tx.Runner
	Catalog        *referencedata.Catalog
	Prisons        PrisonLookup
	Movements      Movements
	Complexity     Complexity
	// Audit is optional. When set, erasure also removes audit events.
	Audit AuditEraser
}

func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		allocations: deps.Allocations,
		events:      deps.RecordedEvents,
		tx:          deps.Tx,
		catalog:     deps.Catalog,
		prisons:     deps.Prisons,
		movements:   deps.Movements,
		complexity:  deps.Complexity,
		audit:       deps.Audit,
		policies:    domain.AllPolicies(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Closure describes one allocation the engine closed.
type Closure struct {
	AllocationID     uuid.UUID
	Policy           domain.Policy
	PersonIdentifier domain.PersonIdentifier
	PrisonCode       domain.PrisonCode
	Reason           referencedata.DeallocationReason
	At               time.Time
}

// Result lists what one reconciliation changed.
type Result struct {
	Closed []Closure
}

// selector picks the active allocations a decision applies to.
type selector func(*models.Allocation) bool

func anyPrison(*models.Allocation) bool { return true }

func atPrison(code domain.PrisonCode) selector {
	return func(a *models.Allocation) bool { return a.PrisonCode == code }
}

func notAtPrison(code domain.PrisonCode) selector {
	return func(a *models.Allocation) bool { return a.PrisonCode != code }
}

// closeMatching closes person's active allocations matching sel under every
// policy, each policy in its own unit of work.
func (e *Engine) closeMatching(ctx context.Context, person domain.PersonIdentifier, sel selector, reason referencedata.DeallocationReason, at time.Time) (Result, error) {
	if _, err := e.catalog.Lookup(reason.Key()); err != nil {
		return Result{}, err
	}

	closed := make([][]Closure, len(e.policies))
	errs := make([]error, len(e.policies))
	var g errgroup.Group
	for i, policy := range e.policies {
		g.Go(func() error {
			closed[i], errs[i] = e.closeForPolicy(ctx, policy, person, sel, reason, at)
			if errs[i] != nil {
				e.logger.ErrorContext(ctx, "deallocation failed",
					"policy", policy,
					"person_identifier", person,
					"reason", reason,
					"error", errs[i],
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	for _, c := range closed {
		result.Closed = append(result.Closed, c...)
	}
	for _, c := range result.Closed {
		e.recordClosure(ctx, c)
	}
	return result, errors.Join(errs...)
}

func (e *Engine) closeForPolicy(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier, sel selector, reason referencedata.DeallocationReason, at time.Time) ([]Closure, error) {
	var closed []Closure
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		closed = closed[:0]
		active, err := e.allocations.ListActive(ctx, policy, person)
		if err != nil {
			return err
		}
		for _, a := range active {
			if !sel(a) {
				continue
			}
			err := e.allocations.Deallocate(ctx, a.ID, at, requestcontext.SystemUsername, reason)
			if errors.Is(err, sentinel.ErrNotFound) {
				// Closed by a concurrent message.
				continue
			}
			if err != nil {
				return err
			}
			closed = append(closed, Closure{
				AllocationID:     a.ID,
				Policy:           policy,
				PersonIdentifier: person,
				PrisonCode:       a.PrisonCode,
				Reason:           reason,
				At:               at,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (e *Engine) recordClosure(ctx context.Context, c Closure) {
	e.metrics.IncrementDeallocation(c.Policy.String(), c.Reason.String())
	e.emit(ctx, audit.Event{
		Timestamp:        c.At,
		Action:           audit.ActionPrisonerDeallocated,
		Policy:           c.Policy,
		PersonIdentifier: c.PersonIdentifier,
		PrisonCode:       c.PrisonCode,
		Reason:           c.Reason.String(),
		Actor:            requestcontext.SystemUsername,
	})
	e.logger.InfoContext(ctx, "allocation closed",
		"policy", c.Policy,
		"person_identifier", c.PersonIdentifier,
		"prison_code", c.PrisonCode,
		"reason", c.Reason,
	)
}

func (e *Engine) emit(ctx context.Context, event audit.Event) {
	if e.auditor == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to emit telemetry", "action", event.Action, "error", err)
	}
}

// eventTime is the event timestamp, or now when the event has none.
func eventTime(ctx context.Context, at time.Time) time.Time {
	if at.IsZero() {
		return requestcontext.Now(ctx)
	}
	return at
}

func (e *Engine) startSpan(ctx context.Context, name string, person domain.PersonIdentifier) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	span.SetAttributes(attribute.String("person_identifier", person.String()))
	return ctx, span
}

func endSpan(span trace.Span, result Result, err error) {
	span.SetAttributes(attribute.Int("closed", len(result.Closed)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
