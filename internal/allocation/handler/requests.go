package handler

import (
	"strings"
	"time"

	"keyworker/internal/allocation/models"
	"keyworker/internal/allocation/service"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
)

const dateLayout = time.DateOnly

type allocateRequest struct {
	PersonIdentifier string `json:"personIdentifier"`
	PrisonCode       string `json:"prisonCode"`
	StaffID          int64  `json:"staffId"`
	Policy           string `json:"policy"`
	AllocationReason string `json:"allocationReason,omitempty"`
}

func (r *allocateRequest) toCommand() (service.AllocateCommand, error) {
	policy, err := domain.ParsePolicy(strings.ToUpper(strings.TrimSpace(r.Policy)))
	if err != nil {
		return service.AllocateCommand{}, err
	}
	person, err := domain.ParsePersonIdentifier(r.PersonIdentifier)
	if err != nil {
		return service.AllocateCommand{}, err
	}
	prison, err := domain.ParsePrisonCode(r.PrisonCode)
	if err != nil {
		return service.AllocateCommand{}, err
	}
	if r.StaffID <= 0 {
		return service.AllocateCommand{}, dErrors.New(dErrors.CodeInvalidInput, "staffId must be positive")
	}
	cmd := service.AllocateCommand{
		Policy:           policy,
		PersonIdentifier: person,
		PrisonCode:       prison,
		StaffID:          domain.StaffID(r.StaffID),
	}
	if r.AllocationReason != "" {
		reason, err := referencedata.ParseAllocationReason(strings.ToUpper(r.AllocationReason))
		if err != nil {
			return service.AllocateCommand{}, err
		}
		cmd.Reason = reason
	}
	return cmd, nil
}

type allocationResponse struct {
	ID                 string     `json:"id"`
	PersonIdentifier   string     `json:"personIdentifier"`
	PrisonCode         string     `json:"prisonCode"`
	StaffID            int64      `json:"staffId"`
	Policy             string     `json:"policy"`
	Active             bool       `json:"active"`
	AllocatedAt        time.Time  `json:"allocatedAt"`
	AllocatedBy        string     `json:"allocatedBy"`
	AllocationReason   string     `json:"allocationReason"`
	DeallocatedAt      *time.Time `json:"deallocatedAt,omitempty"`
	DeallocatedBy      string     `json:"deallocatedBy,omitempty"`
	DeallocationReason string     `json:"deallocationReason,omitempty"`
}

func toResponse(a *models.Allocation) allocationResponse {
	return allocationResponse{
		ID:                 a.ID.String(),
		PersonIdentifier:   a.PersonIdentifier.String(),
		PrisonCode:         a.PrisonCode.String(),
		StaffID:            int64(a.StaffID),
		Policy:             a.Policy.String(),
		Active:             a.IsActive(),
		AllocatedAt:        a.AllocatedAt,
		AllocatedBy:        a.AllocatedBy,
		AllocationReason:   a.AllocationReason.String(),
		DeallocatedAt:      a.DeallocatedAt,
		DeallocatedBy:      a.DeallocatedBy,
		DeallocationReason: a.DeallocationReason.String(),
	}
}

func toResponses(in []*models.Allocation) []allocationResponse {
	out := make([]allocationResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toResponse(a))
	}
	return out
}

type subjectAccessResponse struct {
	PRN     string               `json:"prn"`
	Content []allocationResponse `json:"content"`
}

// parseWindow reads optional fromDate/toDate. toDate covers its whole day.
func parseWindow(fromRaw, toRaw string) (from, to *time.Time, err error) {
	if fromRaw != "" {
		t, err := time.Parse(dateLayout, fromRaw)
		if err != nil {
			return nil, nil, dErrors.New(dErrors.CodeBadRequest, "fromDate must be yyyy-mm-dd")
		}
		from = &t
	}
	if toRaw != "" {
		t, err := time.Parse(dateLayout, toRaw)
		if err != nil {
			return nil, nil, dErrors.New(dErrors.CodeBadRequest, "toDate must be yyyy-mm-dd")
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
