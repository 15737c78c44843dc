package handler

import (
	"time"

	"keyworker/internal/statistics/models"
)

type calculateResponse struct {
	Date   string `json:"date"`
	Events int    `json:"events"`
}

type statisticResponse struct {
	PrisonCode                      string `json:"prisonCode"`
	Policy                          string `json:"policy"`
	Date                            string `json:"date"`
	TotalPrisoners                  int    `json:"totalPrisoners"`
	HighComplexityPrisoners         int    `json:"highComplexityOfNeedPrisoners"`
	EligiblePrisoners               int    `json:"eligiblePrisoners"`
	AssignedPrisoners               int    `json:"assignedKeyworker"`
	NewAllocations                  int    `json:"newAllocations"`
	EligibleStaff                   int    `json:"activeKeyworkers"`
	RecordedSessions                int    `json:"keyworkerSessions"`
	RecordedEntries                 int    `json:"keyworkerEntries"`
	AvgReceptionToAllocationDays    *int   `json:"averageReceptionToAllocationDays,omitempty"`
	AvgReceptionToRecordedEventDays *int   `json:"averageReceptionToSessionDays,omitempty"`
}

func toStatisticResponses(in []*models.PrisonStatistic) []statisticResponse {
	out := make([]statisticResponse, 0, len(in))
	for _, s := range in {
		out = append(out, statisticResponse{
			PrisonCode:                      s.PrisonCode.String(),
			Policy:                          s.Policy.String(),
			Date:                            s.Date.Format(time.DateOnly),
			TotalPrisoners:                  s.TotalPrisoners,
			HighComplexityPrisoners:         s.HighComplexityPrisoners,
			EligiblePrisoners:               s.EligiblePrisoners,
			AssignedPrisoners:               s.AssignedPrisoners,
			NewAllocations:                  s.NewAllocations,
			EligibleStaff:                   s.EligibleStaff,
			RecordedSessions:                s.RecordedSessions,
			RecordedEntries:                 s.RecordedEntries,
			AvgReceptionToAllocationDays:    s.AvgReceptionToAllocationDays,
			AvgReceptionToRecordedEventDays: s.AvgReceptionToRecordedEventDays,
		})
	}
	return out
}

type prisonerResponse struct {
	PersonIdentifier          string     `json:"personIdentifier"`
	CellLocation              string     `json:"cellLocation,omitempty"`
	AllocationEligibilityDate *string    `json:"allocationEligibilityDate,omitempty"`
	HighComplexity            bool       `json:"hasHighComplexityOfNeeds"`
	Allocated                 bool       `json:"hasAllocation"`
	LastRecordedEventAt       *time.Time `json:"recentSessionDate,omitempty"`
}

func toPrisonerResponses(in []models.PrisonerStatistic) []prisonerResponse {
	out := make([]prisonerResponse, 0, len(in))
	for _, p := range in {
		r := prisonerResponse{
			PersonIdentifier:    p.PersonIdentifier.String(),
			CellLocation:        p.CellLocation,
			HighComplexity:      p.HighComplexity,
			Allocated:           p.Allocated,
			LastRecordedEventAt: p.LastRecordedEventAt,
		}
		if p.AllocationEligibilityDate != nil {
			d := p.AllocationEligibilityDate.Format(time.DateOnly)
			r.AllocationEligibilityDate = &d
		}
		out = append(out, r)
	}
	return out
}
