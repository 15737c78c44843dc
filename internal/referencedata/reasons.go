package referencedata

import dErrors "keyworker/pkg/domain-errors"

// DeallocationReason explains why an allocation was closed. The code string
// is the persisted and wire value and must not change.
type DeallocationReason string

const (
	DeallocationOverride                 DeallocationReason = "OVERRIDE"
	DeallocationReleased                 DeallocationReason = "RELEASED"
	DeallocationTransfer                 DeallocationReason = "TRANSFER"
	DeallocationMissing                  DeallocationReason = "MISSING"
	DeallocationDuplicate                DeallocationReason = "DUP"
	DeallocationManual                   DeallocationReason = "MANUAL"
	DeallocationStaffStatusChange        DeallocationReason = "STAFF_STATUS_CHANGE"
	DeallocationChangeInComplexityOfNeed DeallocationReason = "CHANGE_IN_COMPLEXITY_OF_NEED"
)

var deallocationReasons = []ReferenceData{
	{Key{DomainDeallocationReason, string(DeallocationOverride)}, "Overridden", 1},
	{Key{DomainDeallocationReason, string(DeallocationReleased)}, "Released", 2},
	{Key{DomainDeallocationReason, string(DeallocationTransfer)}, "Transferred", 3},
	{Key{DomainDeallocationReason, string(DeallocationMissing)}, "Missing", 4},
	{Key{DomainDeallocationReason, string(DeallocationDuplicate)}, "Duplicate", 5},
	{Key{DomainDeallocationReason, string(DeallocationManual)}, "Manual", 6},
	{Key{DomainDeallocationReason, string(DeallocationStaffStatusChange)}, "Staff status change", 7},
	{Key{DomainDeallocationReason, string(DeallocationChangeInComplexityOfNeed)}, "Change in complexity of need", 8},
}

// ParseDeallocationReason validates a reason code.
func ParseDeallocationReason(code string) (DeallocationReason, error) {
	for _, rd := range deallocationReasons {
		if rd.Key.Code == code {
			return DeallocationReason(code), nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown deallocation reason: "+code)
}

func (r DeallocationReason) Key() Key { return Key{DomainDeallocationReason, string(r)} }

func (r DeallocationReason) String() string { return string(r) }

// AllocationReason records how an allocation came to exist.
type AllocationReason string

const (
	AllocationAuto      AllocationReason = "AUTO"
	AllocationManual    AllocationReason = "MANUAL"
	AllocationMigration AllocationReason = "MIGRATION"
)

var allocationReasons = []ReferenceData{
	{Key{DomainAllocationReason, string(AllocationAuto)}, "Automatic", 1},
	{Key{DomainAllocationReason, string(AllocationManual)}, "Manual", 2},
	{Key{DomainAllocationReason, string(AllocationMigration)}, "Migrated", 3},
}

// ParseAllocationReason validates a reason code.
func ParseAllocationReason(code string) (AllocationReason, error) {
	for _, rd := range allocationReasons {
		if rd.Key.Code == code {
			return AllocationReason(code), nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown allocation reason: "+code)
}

func (r AllocationReason) Key() Key { return Key{DomainAllocationReason, string(r)} }

func (r AllocationReason) String() string { return string(r) }

// StaffStatus is a staff member's availability under a policy. Only ACTIVE
// staff count towards the eligible staff total.
type StaffStatus string

const (
	StaffActive             StaffStatus = "ACTIVE"
	StaffUnavailableAnnual  StaffStatus = "UNAVAILABLE_ANNUAL_LEAVE"
	StaffUnavailableLTS     StaffStatus = "UNAVAILABLE_LONG_TERM_ABSENCE"
	StaffUnavailableNoCover StaffStatus = "UNAVAILABLE_NO_PRISONER_CONTACT"
	StaffInactive           StaffStatus = "INACTIVE"
)

var staffStatuses = []ReferenceData{
	{Key{DomainStaffStatus, string(StaffActive)}, "Active", 1},
	{Key{DomainStaffStatus, string(StaffUnavailableAnnual)}, "Unavailable - annual leave", 2},
	{Key{DomainStaffStatus, string(StaffUnavailableLTS)}, "Unavailable - long term absence", 3},
	{Key{DomainStaffStatus, string(StaffUnavailableNoCover)}, "Unavailable - no prisoner contact", 4},
	{Key{DomainStaffStatus, string(StaffInactive)}, "Inactive", 5},
}

// ParseStaffStatus validates a status code.
func ParseStaffStatus(code string) (StaffStatus, error) {
	for _, rd := range staffStatuses {
		if rd.Key.Code == code {
			return StaffStatus(code), nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown staff status: "+code)
}

func (s StaffStatus) Key() Key { return Key{DomainStaffStatus, string(s)} }

// IsActive reports whether the status counts as available for allocation.
func (s StaffStatus) IsActive() bool { return s == StaffActive }
