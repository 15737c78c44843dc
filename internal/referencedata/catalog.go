// Package referencedata holds the closed code lists used across allocations:
// allocation and deallocation reasons and staff statuses.
//
// Codes are stable serialization contracts. The catalog is built once at
// startup and never mutated, so it is safe to share between goroutines.
package referencedata

import (
	"sort"

	dErrors "keyworker/pkg/domain-errors"
)

// Domain groups related codes.
type Domain string

const (
	DomainAllocationReason   Domain = "ALLOCATION_REASON"
	DomainDeallocationReason Domain = "DEALLOCATION_REASON"
	DomainStaffStatus        Domain = "STAFF_STATUS"
)

// ParseDomain validates a domain name from a request path.
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(s); d {
	case DomainAllocationReason, DomainDeallocationReason, DomainStaffStatus:
		return d, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown reference data domain: "+s)
}

// Key addresses one entry.
type Key struct {
	Domain Domain
	Code   string
}

// ReferenceData is one immutable entry.
type ReferenceData struct {
	Key            Key
	Description    string
	SequenceNumber int
}

// Catalog is a read-only index over every reference data entry.
type Catalog struct {
	entries map[Key]ReferenceData
	byDom   map[Domain][]ReferenceData
}

// NewCatalog loads the built-in code lists.
func NewCatalog() *Catalog {
	c := &Catalog{
		entries: make(map[Key]ReferenceData),
		byDom:   make(map[Domain][]ReferenceData),
	}
	for _, list := range [][]ReferenceData{allocationReasons, deallocationReasons, staffStatuses} {
		for _, rd := range list {
			c.entries[rd.Key] = rd
			c.byDom[rd.Key.Domain] = append(c.byDom[rd.Key.Domain], rd)
		}
	}
	for d := range c.byDom {
		list := c.byDom[d]
		sort.Slice(list, func(i, j int) bool { return list[i].SequenceNumber < list[j].SequenceNumber })
	}
	return c
}

// Lookup returns the entry for key. A missing key is a configuration fault,
// not a caller error, and is reported as an invariant violation.
func (c *Catalog) Lookup(key Key) (ReferenceData, error) {
	rd, ok := c.entries[key]
	if !ok {
		return ReferenceData{}, dErrors.New(dErrors.CodeInvariantViolation,
			"reference data missing for "+string(key.Domain)+"/"+key.Code)
	}
	return rd, nil
}

// List returns a copy of a domain's entries ordered by sequence number.
func (c *Catalog) List(domain Domain) []ReferenceData {
	out := make([]ReferenceData, len(c.byDom[domain]))
	copy(out, c.byDom[domain])
	return out
}
