package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	"keyworker/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func stat(prison domain.PrisonCode, policy domain.Policy, date time.Time) *models.PrisonStatistic {
	return &models.PrisonStatistic{
		PrisonCode:     prison,
		Policy:         policy,
		Date:           date,
		TotalPrisoners: 2,
		Prisoners: []models.PrisonerStatistic{
			{PersonIdentifier: "A1234BC"},
			{PersonIdentifier: "B2345CD", HighComplexity: true},
		},
	}
}

func (s *InMemorySuite) TestSaveIsOncePerDay() {
	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Save(s.ctx, stat("MDI", domain.PolicyKeyWorker, date)))

	exists, err := s.store.Exists(s.ctx, "MDI", domain.PolicyKeyWorker, date.Add(15*time.Hour))
	s.Require().NoError(err)
	s.True(exists)

	err = s.store.Save(s.ctx, stat("MDI", domain.PolicyKeyWorker, date.Add(time.Hour)))
	s.ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.store.Save(s.ctx, stat("MDI", domain.PolicyPersonalOfficer, date)))
}

func (s *InMemorySuite) TestListIsInclusiveAndOmitsPrisoners() {
	for d := 1; d <= 5; d++ {
		s.Require().NoError(s.store.Save(s.ctx, stat("MDI", domain.PolicyKeyWorker, time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC))))
	}
	s.Require().NoError(s.store.Save(s.ctx, stat("LEI", domain.PolicyKeyWorker, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))))

	got, err := s.store.List(s.ctx, "MDI", domain.PolicyKeyWorker,
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(2, got[0].Date.Day())
	s.Equal(4, got[2].Date.Day())
	s.Nil(got[0].Prisoners)
}

func (s *InMemorySuite) TestPrisoners() {
	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Save(s.ctx, stat("MDI", domain.PolicyKeyWorker, date)))

	rows, err := s.store.Prisoners(s.ctx, "MDI", domain.PolicyKeyWorker, date)
	s.Require().NoError(err)
	s.Len(rows, 2)

	_, err = s.store.Prisoners(s.ctx, "MDI", domain.PolicyKeyWorker, date.AddDate(0, 0, 1))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
