// Package service owns allocation lifecycle operations invoked by people:
// allocating with override, manual deallocation, history and subject access.
// Event-driven closures live in the deallocation engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keyworker/internal/allocation/models"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/sentinel"
	"keyworker/pkg/platform/tx"
	"keyworker/pkg/requestcontext"

	"github.com/google/uuid"
)

// Store is the allocation persistence port.
type Store interface {
	Create(ctx context.Context, a *models.Allocation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Allocation, error)
	ListActive(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error)
	Deallocate(ctx context.Context, id uuid.UUID, at time.Time, by string, reason referencedata.DeallocationReason) error
	ListByPerson(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error)
	ListForSubjectAccess(ctx context.Context, person domain.PersonIdentifier, from, to *time.Time) ([]*models.Allocation, error)
}

// Auditor records telemetry events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store   Store
	tx      tx.Runner
	catalog *referencedata.Catalog
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor Auditor
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func New(store Store, runner tx.Runner, catalog *referencedata.Catalog, opts ...Option) *Service {
	s := &Service{
		store:   store,
		tx:      runner,
		catalog: catalog,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllocateCommand requests a new allocation.
type AllocateCommand struct {
	Policy           domain.Policy
	PersonIdentifier domain.PersonIdentifier
	PrisonCode       domain.PrisonCode
	StaffID          domain.StaffID
	Reason           referencedata.AllocationReason
}

// Allocate opens a new allocation. Any active allocation for the same
// person, prison and policy is closed with OVERRIDE in the same unit of work.
func (s *Service) Allocate(ctx context.Context, cmd AllocateCommand) (*models.Allocation, error) {
	if cmd.Reason == "" {
		cmd.Reason = referencedata.AllocationManual
	}
	if _, err := s.catalog.Lookup(cmd.Reason.Key()); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	by := requestcontext.Username(ctx)

	allocation, err := models.NewAllocation(cmd.Policy, cmd.PersonIdentifier, cmd.PrisonCode, cmd.StaffID, now, by, cmd.Reason)
	if err != nil {
		return nil, err
	}

	var overridden []*models.Allocation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		active, err := s.store.ListActive(ctx, cmd.Policy, cmd.PersonIdentifier)
		if err != nil {
			return err
		}
		for _, prior := range active {
			if prior.PrisonCode != cmd.PrisonCode {
				continue
			}
			err := s.store.Deallocate(ctx, prior.ID, now, by, referencedata.DeallocationOverride)
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			overridden = append(overridden, prior)
		}
		return s.store.Create(ctx, allocation)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "allocation changed concurrently, retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate")
	}

	for _, prior := range overridden {
		s.metrics.IncrementDeallocation(prior.Policy.String(), referencedata.DeallocationOverride.String())
		s.emit(ctx, audit.Event{
			Action:           audit.ActionPrisonerDeallocated,
			Policy:           prior.Policy,
			PersonIdentifier: prior.PersonIdentifier,
			PrisonCode:       prior.PrisonCode,
			Reason:           referencedata.DeallocationOverride.String(),
			Actor:            by,
			Timestamp:        now,
		})
	}
	s.metrics.IncrementAllocation(cmd.Policy.String(), cmd.Reason.String())
	s.emit(ctx, audit.Event{
		Action:           audit.ActionAllocationCreated,
		Policy:           cmd.Policy,
		PersonIdentifier: cmd.PersonIdentifier,
		PrisonCode:       cmd.PrisonCode,
		Reason:           cmd.Reason.String(),
		Actor:            by,
		Timestamp:        now,
	})
	s.logger.InfoContext(ctx, "allocation created",
		"policy", cmd.Policy,
		"person_identifier", cmd.PersonIdentifier,
		"prison_code", cmd.PrisonCode,
		"staff_id", cmd.StaffID,
		"overridden", len(overridden),
	)
	return allocation, nil
}

// Deallocate manually closes every active allocation for the person under
// policy with reason MANUAL.
func (s *Service) Deallocate(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) error {
	now := requestcontext.Now(ctx)
	by := requestcontext.Username(ctx)

	var closed []*models.Allocation
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		active, err := s.store.ListActive(ctx, policy, person)
		if err != nil {
			return err
		}
		for _, a := range active {
			err := s.store.Deallocate(ctx, a.ID, now, by, referencedata.DeallocationManual)
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			closed = append(closed, a)
		}
		return nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deallocate")
	}
	if len(closed) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "no active allocation")
	}
	for _, a := range closed {
		s.metrics.IncrementDeallocation(policy.String(), referencedata.DeallocationManual.String())
		s.emit(ctx, audit.Event{
			Action:           audit.ActionPrisonerDeallocated,
			Policy:           policy,
			PersonIdentifier: person,
			PrisonCode:       a.PrisonCode,
			Reason:           referencedata.DeallocationManual.String(),
			Actor:            by,
			Timestamp:        now,
		})
	}
	return nil
}

// History lists all allocations for the person under policy, newest first.
func (s *Service) History(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	out, err := s.store.ListByPerson(ctx, policy, person)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list allocations")
	}
	return out, nil
}

// SubjectAccessRequest returns allocations across every policy made within
// the optional window. An empty result is not an error.
func (s *Service) SubjectAccessRequest(ctx context.Context, person domain.PersonIdentifier, from, to *time.Time) ([]*models.Allocation, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "toDate must not be before fromDate")
	}
	out, err := s.store.ListForSubjectAccess(ctx, person, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allocations")
	}
	if len(out) > 0 {
		s.emit(ctx, audit.Event{
			Action:           audit.ActionSubjectAccessServed,
			PersonIdentifier: person,
			Actor:            requestcontext.Username(ctx),
			RequestID:        requestcontext.RequestID(ctx),
		})
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit telemetry", "action", event.Action, "error", err)
	}
}
