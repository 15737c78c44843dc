package store

import (
	"context"
	"testing"
	"time"

	"keyworker/internal/recordedevent"
	"keyworker/pkg/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) record(caseNoteID string, policy domain.Policy, person domain.PersonIdentifier, at time.Time) *recordedevent.RecordedEvent {
	e := &recordedevent.RecordedEvent{
		ID:               uuid.New(),
		CaseNoteID:       caseNoteID,
		Policy:           policy,
		PersonIdentifier: person,
		PrisonCode:       "MDI",
		Type:             recordedevent.TypeSession,
		OccurredAt:       at,
		CreatedAt:        s.now,
	}
	s.Require().NoError(s.store.Upsert(s.ctx, e))
	return e
}

func (s *InMemoryStoreSuite) list(policy domain.Policy, persons ...domain.PersonIdentifier) []*recordedevent.RecordedEvent {
	out, err := s.store.ListForPersons(s.ctx, policy, persons, s.now.Add(-24*time.Hour), s.now.Add(24*time.Hour))
	s.Require().NoError(err)
	return out
}

func (s *InMemoryStoreSuite) TestUpsert() {
	s.Run("same case note keeps original id", func() {
		first := s.record("cn-1", domain.PolicyKeyWorker, "A1234BC", s.now)
		s.record("cn-1", domain.PolicyKeyWorker, "A1234BC", s.now.Add(time.Minute))

		events := s.list(domain.PolicyKeyWorker, "A1234BC")
		s.Require().Len(events, 1)
		s.Equal(first.ID, events[0].ID)
		s.Equal(s.now.Add(time.Minute), events[0].OccurredAt)
	})
}

func (s *InMemoryStoreSuite) TestListForPersons() {
	s.SetupTest()
	s.record("cn-1", domain.PolicyKeyWorker, "A1234BC", s.now.Add(time.Hour))
	s.record("cn-2", domain.PolicyKeyWorker, "A1234BC", s.now)
	s.record("cn-3", domain.PolicyKeyWorker, "B1234BC", s.now)
	s.record("cn-4", domain.PolicyPersonalOfficer, "A1234BC", s.now)
	s.record("cn-5", domain.PolicyKeyWorker, "A1234BC", s.now.Add(48*time.Hour))

	events := s.list(domain.PolicyKeyWorker, "A1234BC")
	s.Require().Len(events, 2)
	s.Equal("cn-2", events[0].CaseNoteID)
	s.Equal("cn-1", events[1].CaseNoteID)
}

func (s *InMemoryStoreSuite) TestReassignAndDelete() {
	s.SetupTest()
	s.record("cn-1", domain.PolicyKeyWorker, "A1234BC", s.now)
	s.record("cn-2", domain.PolicyPersonalOfficer, "A1234BC", s.now)

	n, err := s.store.ReassignPerson(s.ctx, domain.PolicyKeyWorker, "A1234BC", "A9999ZZ")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Len(s.list(domain.PolicyKeyWorker, "A9999ZZ"), 1)
	s.Len(s.list(domain.PolicyPersonalOfficer, "A1234BC"), 1)

	n, err = s.store.DeletePerson(s.ctx, "A1234BC")
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.store.DeleteByCaseNote(s.ctx, "cn-1")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Empty(s.list(domain.PolicyKeyWorker, "A9999ZZ"))
}
