//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"keyworker/internal/prisonconfig"
	"keyworker/internal/prisonconfig/store"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	"keyworker/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "prison_configuration", "staff_configuration"))
}

func (s *PostgresStoreSuite) TestPrisonRoundTrip() {
	ctx := context.Background()
	cfg := prisonconfig.PrisonConfig{PrisonCode: "MDI", Policy: domain.PolicyKeyWorker, Enabled: true, HasPrisonersWithHighComplexity: true, Capacity: 8}
	s.Require().NoError(s.store.SavePrison(ctx, cfg))

	got, err := s.store.FindPrison(ctx, "MDI", domain.PolicyKeyWorker)
	s.Require().NoError(err)
	s.Equal(cfg, got)

	cfg.Enabled = false
	s.Require().NoError(s.store.SavePrison(ctx, cfg))
	enabled, err := s.store.ListEnabled(ctx, domain.PolicyKeyWorker)
	s.Require().NoError(err)
	s.Empty(enabled)

	missing, err := s.store.FindPrison(ctx, "LEI", domain.PolicyKeyWorker)
	s.Require().NoError(err)
	s.False(missing.Enabled)
}

func (s *PostgresStoreSuite) TestStaffLookup() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveStaff(ctx, prisonconfig.StaffConfig{StaffID: 11, Policy: domain.PolicyKeyWorker, Status: referencedata.StaffInactive, Capacity: 6}))
	s.Require().NoError(s.store.SaveStaff(ctx, prisonconfig.StaffConfig{StaffID: 11, Policy: domain.PolicyPersonalOfficer, Status: referencedata.StaffActive, Capacity: 6}))

	got, err := s.store.ListStaff(ctx, domain.PolicyKeyWorker, []domain.StaffID{11, 12})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(referencedata.StaffInactive, got[11].Status)
}
