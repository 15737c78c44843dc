package referencedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "keyworker/pkg/domain-errors"
)

func TestCatalog_LookupKnownReason(t *testing.T) {
	c := NewCatalog()
	rd, err := c.Lookup(DeallocationTransfer.Key())
	require.NoError(t, err)
	assert.Equal(t, "Transferred", rd.Description)
}

func TestCatalog_MissingKeyIsInvariantViolation(t *testing.T) {
	c := NewCatalog()
	_, err := c.Lookup(Key{DomainDeallocationReason, "NOT_A_REASON"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestCatalog_ListIsOrderedAndDetached(t *testing.T) {
	c := NewCatalog()
	list := c.List(DomainDeallocationReason)
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].SequenceNumber, list[i].SequenceNumber)
	}

	list[0].Description = "mutated"
	again := c.List(DomainDeallocationReason)
	assert.NotEqual(t, "mutated", again[0].Description)
}

func TestEveryEnumValueHasCatalogEntry(t *testing.T) {
	c := NewCatalog()
	reasons := []DeallocationReason{
		DeallocationOverride, DeallocationReleased, DeallocationTransfer, DeallocationMissing,
		DeallocationDuplicate, DeallocationManual, DeallocationStaffStatusChange,
		DeallocationChangeInComplexityOfNeed,
	}
	for _, r := range reasons {
		_, err := c.Lookup(r.Key())
		assert.NoError(t, err, r)
	}
	for _, r := range []AllocationReason{AllocationAuto, AllocationManual, AllocationMigration} {
		_, err := c.Lookup(r.Key())
		assert.NoError(t, err, r)
	}
}

func TestParseDeallocationReason(t *testing.T) {
	r, err := ParseDeallocationReason("RELEASED")
	require.NoError(t, err)
	assert.Equal(t, DeallocationReleased, r)

	_, err = ParseDeallocationReason("released")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestStaffStatus_IsActive(t *testing.T) {
	assert.True(t, StaffActive.IsActive())
	assert.False(t, StaffInactive.IsActive())
	assert.False(t, StaffUnavailableAnnual.IsActive())
}
