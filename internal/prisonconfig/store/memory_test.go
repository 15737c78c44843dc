package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyworker/internal/prisonconfig"
	"keyworker/pkg/domain"
)

func TestInMemory_FindPrisonDefaultsToDisabled(t *testing.T) {
	s := NewInMemory()
	cfg, err := s.FindPrison(context.Background(), "BXI", domain.PolicyKeyWorker)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.HasPrisonersWithHighComplexity)
	assert.Equal(t, domain.PrisonCode("BXI"), cfg.PrisonCode)
}

func TestInMemory_ListEnabledIsPartitionedByPolicy(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.SavePrison(ctx, prisonconfig.PrisonConfig{PrisonCode: "MDI", Policy: domain.PolicyKeyWorker, Enabled: true}))
	require.NoError(t, s.SavePrison(ctx, prisonconfig.PrisonConfig{PrisonCode: "LEI", Policy: domain.PolicyKeyWorker, Enabled: true}))
	require.NoError(t, s.SavePrison(ctx, prisonconfig.PrisonConfig{PrisonCode: "MDI", Policy: domain.PolicyPersonalOfficer, Enabled: true}))
	require.NoError(t, s.SavePrison(ctx, prisonconfig.PrisonConfig{PrisonCode: "BXI", Policy: domain.PolicyKeyWorker}))

	out, err := s.ListEnabled(ctx, domain.PolicyKeyWorker)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.PrisonCode("LEI"), out[0].PrisonCode)
	assert.Equal(t, domain.PrisonCode("MDI"), out[1].PrisonCode)
}
