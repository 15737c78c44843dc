// Package calculator produces the daily allocation and compliance snapshot
// for a prison under a policy.
package calculator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	allocationmodels "keyworker/internal/allocation/models"
	"keyworker/internal/gateway"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/prisonconfig"
	"keyworker/internal/recordedevent"
	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/sentinel"
	"keyworker/pkg/platform/tx"
	"keyworker/pkg/requestcontext"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const tracerName = "keyworker/statistics"

// recentWindow bounds which residents contribute to the average day counts.
const recentWindow = 6 // months

// Store persists snapshots.
type Store interface {
	Exists(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) (bool, error)
	Save(ctx context.Context, stat *models.PrisonStatistic) error
}

// Prisoners lists a prison's current residents.
type Prisoners interface {
	FindPrisonersInPrison(ctx context.Context, prison domain.PrisonCode) ([]gateway.Prisoner, error)
}

// Complexity fetches complexity of need levels.
type Complexity interface {
	Levels(ctx context.Context, persons []domain.PersonIdentifier) (map[domain.PersonIdentifier]gateway.ComplexityOfNeed, error)
}

// Staff lists staff holding the policy's role at a prison.
type Staff interface {
	StaffWithRole(ctx context.Context, prison domain.PrisonCode, role string) ([]gateway.StaffRole, error)
}

// CaseNoteUsage summarises case notes per person.
type CaseNoteUsage interface {
	UsageByPersonIdentifier(ctx context.Context, req gateway.UsageRequest) (map[domain.PersonIdentifier][]gateway.NoteUsage, error)
}

// Allocations reads allocations held at a prison.
type Allocations interface {
	ListForPersons(ctx context.Context, policy domain.Policy, prison domain.PrisonCode, persons []domain.PersonIdentifier) ([]*allocationmodels.Allocation, error)
}

// RecordedEvents reads mirrored session and entry case notes.
type RecordedEvents interface {
	ListForPersons(ctx context.Context, policy domain.Policy, persons []domain.PersonIdentifier, from, to time.Time) ([]*recordedevent.RecordedEvent, error)
}

// Configuration reads prison and staff settings.
type Configuration interface {
	FindPrison(ctx context.Context, prison domain.PrisonCode, policy domain.Policy) (prisonconfig.PrisonConfig, error)
	ListStaff(ctx context.Context, policy domain.Policy, ids []domain.StaffID) (map[domain.StaffID]prisonconfig.StaffConfig, error)
}

// Auditor records telemetry events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Deps bundles the calculator's collaborators.
type Deps struct {
	Store          Store
	Tx             tx.Runner
	Prisoners      Prisoners
	Complexity     Complexity
	Staff          Staff
	CaseNotes      CaseNoteUsage
	Allocations    Allocations
	RecordedEvents RecordedEvents
	Configuration  Configuration
}

type Calculator struct {
	Deps
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor Auditor
}

type Option func(*Calculator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(c *Calculator) { c.auditor = a }
}

func New(deps Deps, opts ...Option) *Calculator {
	c := &Calculator{
		Deps:   deps,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Outcome labels what a calculation did.
type Outcome string

const (
	OutcomeCalculated        Outcome = "calculated"
	OutcomeAlreadyCalculated Outcome = "already_calculated"
	OutcomeNoPrisoners       Outcome = "no_prisoners"
	OutcomeAllHighComplexity Outcome = "all_high_complexity"
	OutcomeFailed            Outcome = "failed"
)

// Calculate records the snapshot for (prison, date, policy) at most once.
// A nil statistic with a nil error means the calculation was skipped; the
// outcome says why.
func (c *Calculator) Calculate(ctx context.Context, prison domain.PrisonCode, date time.Time, policy domain.Policy) (stat *models.PrisonStatistic, outcome Outcome, err error) {
	if !policy.IsValid() {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "invalid policy")
	}
	date = models.Day(date)
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "statistics.calculate")
	span.SetAttributes(
		attribute.String("prison_code", prison.String()),
		attribute.String("policy", policy.String()),
		attribute.String("date", date.Format(time.DateOnly)),
	)
	defer func() {
		if err != nil {
			outcome = OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("outcome", string(outcome)))
		span.End()
		c.metrics.IncrementStatistics(policy.String(), string(outcome))
		c.metrics.ObserveStatisticsDuration(time.Since(start))
	}()

	exists, err := c.Store.Exists(ctx, prison, policy, date)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, OutcomeAlreadyCalculated, nil
	}

	residents, err := c.Prisoners.FindPrisonersInPrison(ctx, prison)
	if err != nil {
		return nil, "", err
	}
	if len(residents) == 0 {
		c.logger.InfoContext(ctx, "no prisoners, statistics skipped", "prison_code", prison, "policy", policy)
		return nil, OutcomeNoPrisoners, nil
	}

	cfg, err := c.Configuration.FindPrison(ctx, prison, policy)
	if err != nil {
		return nil, "", err
	}
	persons := make([]domain.PersonIdentifier, len(residents))
	for i, r := range residents {
		persons[i] = domain.PersonIdentifier(r.PrisonerNumber)
	}
	levels := map[domain.PersonIdentifier]gateway.ComplexityOfNeed{}
	if cfg.HasPrisonersWithHighComplexity {
		if levels, err = c.Complexity.Levels(ctx, persons); err != nil {
			return nil, "", err
		}
	}

	now := requestcontext.Now(ctx)
	population := newPopulation(residents, levels, now)
	if len(population.eligible) == 0 {
		c.logger.InfoContext(ctx, "all prisoners high complexity, statistics skipped", "prison_code", prison, "policy", policy)
		return nil, OutcomeAllHighComplexity, nil
	}

	inputs, err := c.gather(ctx, prison, date, policy, population)
	if err != nil {
		return nil, "", err
	}

	stat = population.summarise(inputs, date)
	stat.ID = uuid.New()
	stat.PrisonCode = prison
	stat.Policy = policy
	stat.CreatedAt = now

	err = c.Tx.RunInTx(ctx, func(ctx context.Context) error {
		return c.Store.Save(ctx, stat)
	})
	if errors.Is(err, sentinel.ErrConflict) {
		return nil, OutcomeAlreadyCalculated, nil
	}
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save prison statistic")
	}

	c.emit(ctx, audit.Event{
		Action:     audit.ActionStatisticsRecorded,
		Policy:     policy,
		PrisonCode: prison,
		Reason:     date.Format(time.DateOnly),
		Actor:      requestcontext.SystemUsername,
	})
	c.logger.InfoContext(ctx, "prison statistics recorded",
		"prison_code", prison,
		"policy", policy,
		"date", date.Format(time.DateOnly),
		"eligible_prisoners", stat.EligiblePrisoners,
		"assigned_prisoners", stat.AssignedPrisoners,
	)
	return stat, OutcomeCalculated, nil
}

// inputs are the external reads made for the eligible population.
type inputs struct {
	allocations   []*allocationmodels.Allocation
	events        []*recordedevent.RecordedEvent
	latestByNotes map[domain.PersonIdentifier]time.Time
	staff         []gateway.StaffRole
	staffConfig   map[domain.StaffID]prisonconfig.StaffConfig
}

// gather runs the independent reads concurrently.
func (c *Calculator) gather(ctx context.Context, prison domain.PrisonCode, date time.Time, policy domain.Policy, pop *population) (*inputs, error) {
	var in inputs
	eligible := pop.eligibleIdentifiers()
	dayEnd := date.AddDate(0, 0, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.allocations, err = c.Allocations.ListForPersons(gctx, policy, prison, eligible)
		return err
	})
	g.Go(func() error {
		var err error
		in.events, err = c.RecordedEvents.ListForPersons(gctx, policy, eligible, pop.eventsFrom(date), dayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		in.latestByNotes, err = c.latestNotes(gctx, policy, eligible, dayEnd)
		return err
	})
	g.Go(func() error {
		staff, err := c.Staff.StaffWithRole(gctx, prison, gateway.RoleFor(policy))
		if err != nil {
			return err
		}
		ids := make([]domain.StaffID, len(staff))
		for i, s := range staff {
			ids[i] = domain.StaffID(s.StaffID)
		}
		cfg, err := c.Configuration.ListStaff(gctx, policy, ids)
		if err != nil {
			return err
		}
		in.staff, in.staffConfig = staff, cfg
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// latestNotes returns each person's latest session or entry note up to
// before, as known to the case notes service.
func (c *Calculator) latestNotes(ctx context.Context, policy domain.Policy, persons []domain.PersonIdentifier, before time.Time) (map[domain.PersonIdentifier]time.Time, error) {
	req := gateway.UsageRequest{OccurredTo: &before}
	for _, kind := range []recordedevent.Type{recordedevent.TypeSession, recordedevent.TypeEntry} {
		if noteType, subTypes := recordedevent.TypeSubTypes(policy, kind); noteType != "" {
			req.TypeSubTypes = append(req.TypeSubTypes, gateway.TypeSubTypes{Type: noteType, SubTypes: subTypes})
		}
	}
	req.PersonIdentifiers = make([]string, len(persons))
	for i, p := range persons {
		req.PersonIdentifiers[i] = p.String()
	}

	usage, err := c.CaseNotes.UsageByPersonIdentifier(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.PersonIdentifier]time.Time, len(usage))
	for person, notes := range usage {
		for _, n := range notes {
			if at := n.LatestAt(); at != nil && at.After(out[person]) {
				out[person] = *at
			}
		}
	}
	return out, nil
}

func (c *Calculator) emit(ctx context.Context, event audit.Event) {
	if c.auditor == nil {
		return
	}
	if err := c.auditor.Emit(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "failed to emit telemetry", "action", event.Action, "error", err)
	}
}
