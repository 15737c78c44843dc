package deallocation

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks PrisonLookup,Movements,Complexity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"keyworker/internal/allocation/models"
	allocationstore "keyworker/internal/allocation/store"
	"keyworker/internal/deallocation/mocks"
	"keyworker/internal/gateway"
	"keyworker/internal/recordedevent"
	eventstore "keyworker/internal/recordedevent/store"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
	auditmemory "keyworker/pkg/platform/audit/store/memory"
	"keyworker/pkg/platform/tx"
	"keyworker/pkg/requestcontext"

	"github.com/google/uuid"
)

type EngineSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	prisons     *mocks.MockPrisonLookup
	movements   *mocks.MockMovements
	complexity  *mocks.MockComplexity
	allocations *allocationstore.InMemory
	events      *eventstore.InMemory
	audit       *auditmemory.InMemoryStore
	engine      *Engine
	ctx         context.Context
	now         time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

type auditStore struct{ store *auditmemory.InMemoryStore }

func (a auditStore) Emit(ctx context.Context, e audit.Event) error { return a.store.Append(ctx, e) }

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.prisons = mocks.NewMockPrisonLookup(s.ctrl)
	s.movements = mocks.NewMockMovements(s.ctrl)
	s.complexity = mocks.NewMockComplexity(s.ctrl)
	s.allocations = allocationstore.NewInMemory()
	s.events = eventstore.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.engine = s.newEngine(s.allocations)
}

func (s *EngineSuite) newEngine(allocations AllocationStore) *Engine {
	return New(Deps{
		Allocations:    allocations,
		RecordedEvents: s.events,
		Tx:             tx.NewLocalRunner(),
		Catalog:        referencedata.NewCatalog(),
		Prisons:        s.prisons,
		Movements:      s.movements,
		Complexity:     s.complexity,
		Audit:          s.audit,
	}, WithAuditor(auditStore{s.audit}))
}

func (s *EngineSuite) allocate(policy domain.Policy, person domain.PersonIdentifier, prison domain.PrisonCode) *models.Allocation {
	a, err := models.NewAllocation(policy, person, prison, 11, s.now.Add(-48*time.Hour), "JSMITH_GEN", referencedata.AllocationManual)
	s.Require().NoError(err)
	s.Require().NoError(s.allocations.Create(s.ctx, a))
	return a
}

func (s *EngineSuite) reload(a *models.Allocation) *models.Allocation {
	got, err := s.allocations.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	return got
}

func (s *EngineSuite) TestRelease() {
	s.Run("release closes every policy regardless of destination", func() {
		s.SetupTest()
		kw := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		po := s.allocate(domain.PolicyPersonalOfficer, "A1234BC", "MDI")
		occurred := s.now.Add(-time.Hour)

		result, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementRelease,
			FromAgency:       "MDI",
			ToAgency:         "OUT",
			OccurredAt:       occurred,
		})
		s.Require().NoError(err)
		s.Len(result.Closed, 2)

		for _, a := range []*models.Allocation{kw, po} {
			got := s.reload(a)
			s.False(got.IsActive())
			s.Equal(referencedata.DeallocationReleased, got.DeallocationReason)
			s.Equal(requestcontext.SystemUsername, got.DeallocatedBy)
			s.Equal(occurred, *got.DeallocatedAt)
		}
		s.Len(s.audit.All(), 2)
	})

	s.Run("replaying the same release is a no-op", func() {
		s.SetupTest()
		s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		m := Movement{PersonIdentifier: "A1234BC", Direction: gateway.DirectionOut, MovementType: gateway.MovementRelease, FromAgency: "MDI"}

		first, err := s.engine.ReconcileMovement(s.ctx, m)
		s.Require().NoError(err)
		s.Len(first.Closed, 1)

		second, err := s.engine.ReconcileMovement(s.ctx, m)
		s.Require().NoError(err)
		s.Empty(second.Closed)
	})

	s.Run("missing event time falls back to now", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		_, err := s.engine.ReconcileMovement(s.ctx, Movement{PersonIdentifier: "A1234BC", Direction: gateway.DirectionOut, MovementType: gateway.MovementRelease})
		s.Require().NoError(err)
		s.Equal(s.now, *s.reload(a).DeallocatedAt)
	})
}

func (s *EngineSuite) TestTransfer() {
	s.Run("transfer to a different prison closes with TRANSFER", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.prisons.EXPECT().IsPrison(gomock.Any(), domain.PrisonCode("LEI")).Return(true, nil)

		result, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementTransfer,
			FromAgency:       "MDI",
			ToAgency:         "LEI",
		})
		s.Require().NoError(err)
		s.Require().Len(result.Closed, 1)
		s.Equal(referencedata.DeallocationTransfer, s.reload(a).DeallocationReason)
	})

	s.Run("transfer to a non-prison location does not deallocate", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.prisons.EXPECT().IsPrison(gomock.Any(), domain.PrisonCode("LEEDCC")).Return(false, nil)

		result, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementTransfer,
			FromAgency:       "MDI",
			ToAgency:         "LEEDCC",
		})
		s.Require().NoError(err)
		s.Empty(result.Closed)
		s.True(s.reload(a).IsActive())
	})

	s.Run("transfer within the same prison does not deallocate", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")

		_, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementTransfer,
			FromAgency:       "MDI",
			ToAgency:         "MDI",
		})
		s.Require().NoError(err)
		s.True(s.reload(a).IsActive())
	})

	s.Run("admission to a prison closes allocations elsewhere", func() {
		s.SetupTest()
		elsewhere := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		here := s.allocate(domain.PolicyPersonalOfficer, "A1234BC", "LEI")
		s.prisons.EXPECT().IsPrison(gomock.Any(), domain.PrisonCode("LEI")).Return(true, nil)

		_, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionIn,
			MovementType:     gateway.MovementAdmission,
			FromAgency:       "MDI",
			ToAgency:         "LEI",
		})
		s.Require().NoError(err)
		s.Equal(referencedata.DeallocationTransfer, s.reload(elsewhere).DeallocationReason)
		s.True(s.reload(here).IsActive())
	})

	s.Run("court movement is ignored", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		_, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementCourt,
			FromAgency:       "MDI",
			ToAgency:         "LEEDCC",
		})
		s.Require().NoError(err)
		s.True(s.reload(a).IsActive())
	})

	s.Run("register failure propagates", func() {
		s.SetupTest()
		s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		boom := errors.New("register unavailable")
		s.prisons.EXPECT().IsPrison(gomock.Any(), domain.PrisonCode("LEI")).Return(false, boom)

		_, err := s.engine.ReconcileMovement(s.ctx, Movement{
			PersonIdentifier: "A1234BC",
			Direction:        gateway.DirectionOut,
			MovementType:     gateway.MovementTransfer,
			FromAgency:       "MDI",
			ToAgency:         "LEI",
		})
		s.ErrorIs(err, boom)
	})
}

func (s *EngineSuite) TestMovementLookup() {
	s.Run("details are fetched when the event omits them", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.movements.EXPECT().Movement(gomock.Any(), int64(1200), 3).Return(&gateway.Movement{
			OffenderNo:    "A1234BC",
			FromAgency:    "MDI",
			ToAgency:      "OUT",
			MovementType:  gateway.MovementRelease,
			DirectionCode: gateway.DirectionOut,
		}, nil)

		_, err := s.engine.ReconcileMovement(s.ctx, Movement{PersonIdentifier: "A1234BC", BookingID: 1200, Sequence: 3})
		s.Require().NoError(err)
		s.Equal(referencedata.DeallocationReleased, s.reload(a).DeallocationReason)
	})

	s.Run("unknown movement is a no-op", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.movements.EXPECT().Movement(gomock.Any(), int64(1200), 3).Return(nil, nil)

		_, err := s.engine.ReconcileMovement(s.ctx, Movement{PersonIdentifier: "A1234BC", BookingID: 1200, Sequence: 3})
		s.Require().NoError(err)
		s.True(s.reload(a).IsActive())
	})
}

func (s *EngineSuite) TestComplexity() {
	active := true
	inactive := false

	s.Run("active HIGH closes every allocation", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		_, err := s.engine.ReconcileComplexity(s.ctx, ComplexityChange{PersonIdentifier: "A1234BC", Level: gateway.ComplexityHigh, Active: &active})
		s.Require().NoError(err)
		s.Equal(referencedata.DeallocationChangeInComplexityOfNeed, s.reload(a).DeallocationReason)
	})

	s.Run("upper and mixed case levels close", func() {
		for _, level := range []gateway.ComplexityLevel{"HIGH", "High"} {
			s.SetupTest()
			a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
			_, err := s.engine.ReconcileComplexity(s.ctx, ComplexityChange{PersonIdentifier: "A1234BC", Level: level, Active: &active})
			s.Require().NoError(err)
			s.False(s.reload(a).IsActive(), string(level))
		}
	})

	s.Run("inactive HIGH is ignored", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		_, err := s.engine.ReconcileComplexity(s.ctx, ComplexityChange{PersonIdentifier: "A1234BC", Level: gateway.ComplexityHigh, Active: &inactive})
		s.Require().NoError(err)
		s.True(s.reload(a).IsActive())
	})

	s.Run("lower level is ignored", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		_, err := s.engine.ReconcileComplexity(s.ctx, ComplexityChange{PersonIdentifier: "A1234BC", Level: gateway.ComplexityMedium})
		s.Require().NoError(err)
		s.True(s.reload(a).IsActive())
	})

	s.Run("level is fetched when absent", func() {
		s.SetupTest()
		a := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.complexity.EXPECT().Levels(gomock.Any(), []domain.PersonIdentifier{"A1234BC"}).Return(map[domain.PersonIdentifier]gateway.ComplexityOfNeed{
			"A1234BC": {OffenderNo: "A1234BC", Level: gateway.ComplexityHigh},
		}, nil)

		_, err := s.engine.ReconcileComplexity(s.ctx, ComplexityChange{PersonIdentifier: "A1234BC"})
		s.Require().NoError(err)
		s.False(s.reload(a).IsActive())
	})
}

func (s *EngineSuite) TestMerge() {
	s.Run("relinks allocations and recorded events for every policy", func() {
		s.SetupTest()
		s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.allocate(domain.PolicyPersonalOfficer, "A1234BC", "MDI")
		s.Require().NoError(s.events.Upsert(s.ctx, &recordedevent.RecordedEvent{
			ID: uuid.New(), CaseNoteID: "cn-1", Policy: domain.PolicyKeyWorker,
			PersonIdentifier: "A1234BC", PrisonCode: "MDI", Type: recordedevent.TypeSession, OccurredAt: s.now,
		}))

		result, err := s.engine.ReconcileMerge(s.ctx, Merge{Removed: "A1234BC", Retained: "A9999ZZ"})
		s.Require().NoError(err)
		s.Equal(int64(2), result.Allocations)
		s.Equal(int64(1), result.RecordedEvents)
		s.Empty(result.Closed)

		for _, policy := range domain.AllPolicies() {
			old, err := s.allocations.ListByPerson(s.ctx, policy, "A1234BC")
			s.Require().NoError(err)
			s.Empty(old)
			active, err := s.allocations.ListActive(s.ctx, policy, "A9999ZZ")
			s.Require().NoError(err)
			s.Len(active, 1)
		}
	})

	s.Run("duplicate active allocation is closed before relinking", func() {
		s.SetupTest()
		dup := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
		s.allocate(domain.PolicyKeyWorker, "A9999ZZ", "MDI")

		result, err := s.engine.ReconcileMerge(s.ctx, Merge{Removed: "A1234BC", Retained: "A9999ZZ"})
		s.Require().NoError(err)
		s.Require().Len(result.Closed, 1)
		s.Equal(referencedata.DeallocationDuplicate, s.reload(dup).DeallocationReason)

		active, err := s.allocations.ListActive(s.ctx, domain.PolicyKeyWorker, "A9999ZZ")
		s.Require().NoError(err)
		s.Len(active, 1)
		history, err := s.allocations.ListByPerson(s.ctx, domain.PolicyKeyWorker, "A9999ZZ")
		s.Require().NoError(err)
		s.Len(history, 2)
	})

	s.Run("merge into itself is a no-op", func() {
		s.SetupTest()
		result, err := s.engine.ReconcileMerge(s.ctx, Merge{Removed: "A1234BC", Retained: "A1234BC"})
		s.Require().NoError(err)
		s.Zero(result.Allocations)
	})
}

func (s *EngineSuite) TestErase() {
	s.SetupTest()
	s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
	s.allocate(domain.PolicyKeyWorker, "B1234BC", "MDI")
	s.Require().NoError(s.events.Upsert(s.ctx, &recordedevent.RecordedEvent{
		ID: uuid.New(), CaseNoteID: "cn-1", Policy: domain.PolicyKeyWorker,
		PersonIdentifier: "A1234BC", PrisonCode: "MDI", Type: recordedevent.TypeEntry, OccurredAt: s.now,
	}))

	s.Require().NoError(s.audit.Append(s.ctx, audit.Event{Action: audit.ActionPrisonerDeallocated, PersonIdentifier: "A1234BC"}))
	s.Require().NoError(s.audit.Append(s.ctx, audit.Event{Action: audit.ActionPrisonerDeallocated, PersonIdentifier: "B1234BC"}))

	result, err := s.engine.Erase(s.ctx, "A1234BC")
	s.Require().NoError(err)
	s.Equal(int64(1), result.Allocations)
	s.Equal(int64(1), result.RecordedEvents)
	s.Equal(int64(1), result.AuditEvents)

	left, err := s.allocations.ListByPerson(s.ctx, domain.PolicyKeyWorker, "B1234BC")
	s.Require().NoError(err)
	s.Len(left, 1)

	trail, err := s.audit.ListByPerson(s.ctx, "A1234BC")
	s.Require().NoError(err)
	s.Empty(trail, "erasure leaves no audit rows naming the person")
	for _, ev := range s.audit.All() {
		s.NotEqual(domain.PersonIdentifier("A1234BC"), ev.PersonIdentifier)
	}
	other, err := s.audit.ListByPerson(s.ctx, "B1234BC")
	s.Require().NoError(err)
	s.Len(other, 1)
}

// failingStore fails every read under one policy.
type failingStore struct {
	*allocationstore.InMemory
	policy domain.Policy
}

func (f failingStore) ListActive(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	if policy == f.policy {
		return nil, errors.New("store unavailable")
	}
	return f.InMemory.ListActive(ctx, policy, person)
}

func (s *EngineSuite) TestPolicyFailureDoesNotStopOtherPolicy() {
	s.SetupTest()
	kw := s.allocate(domain.PolicyKeyWorker, "A1234BC", "MDI")
	s.allocate(domain.PolicyPersonalOfficer, "A1234BC", "MDI")
	engine := s.newEngine(failingStore{InMemory: s.allocations, policy: domain.PolicyPersonalOfficer})

	result, err := engine.ReconcileMovement(s.ctx, Movement{
		PersonIdentifier: "A1234BC",
		Direction:        gateway.DirectionOut,
		MovementType:     gateway.MovementRelease,
	})
	s.Error(err)
	s.Len(result.Closed, 1)
	s.False(s.reload(kw).IsActive())
}
