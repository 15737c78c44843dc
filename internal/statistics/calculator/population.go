package calculator

import (
	"time"

	"keyworker/internal/gateway"
	"keyworker/internal/prisonconfig"
	"keyworker/internal/recordedevent"
	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
)

type resident struct {
	person      domain.PersonIdentifier
	cell        string
	high        bool
	eligibility *time.Time
}

// population is a prison's residents split by complexity of need.
type population struct {
	residents  []resident
	eligible   []*resident
	recentFrom time.Time
}

func newPopulation(prisoners []gateway.Prisoner, levels map[domain.PersonIdentifier]gateway.ComplexityOfNeed, now time.Time) *population {
	p := &population{
		residents:  make([]resident, len(prisoners)),
		recentFrom: models.Day(now).AddDate(0, -recentWindow, 0),
	}
	for i, prisoner := range prisoners {
		r := resident{
			person: domain.PersonIdentifier(prisoner.PrisonerNumber),
			cell:   prisoner.CellLocation,
		}
		level, hasLevel := levels[r.person]
		r.high = hasLevel && level.IsHigh()
		if !r.high {
			r.eligibility = latestDay(prisoner.AdmissionDate(), level.UpdatedTimeStamp.Time)
		}
		p.residents[i] = r
	}
	for i := range p.residents {
		if !p.residents[i].high {
			p.eligible = append(p.eligible, &p.residents[i])
		}
	}
	return p
}

// latestDay is the later of the admission date and the complexity update,
// truncated to a day. Nil when neither is known.
func latestDay(admission *time.Time, complexityUpdated time.Time) *time.Time {
	var latest time.Time
	if admission != nil {
		latest = *admission
	}
	if complexityUpdated.After(latest) {
		latest = complexityUpdated
	}
	if latest.IsZero() {
		return nil
	}
	d := models.Day(latest)
	return &d
}

func (p *population) eligibleIdentifiers() []domain.PersonIdentifier {
	out := make([]domain.PersonIdentifier, len(p.eligible))
	for i, r := range p.eligible {
		out[i] = r.person
	}
	return out
}

// eventsFrom is the start of the recorded event window: early enough for
// both the recent residents and the statistic date itself.
func (p *population) eventsFrom(date time.Time) time.Time {
	if date.Before(p.recentFrom) {
		return date
	}
	return p.recentFrom
}

func (p *population) isRecent(r *resident) bool {
	return r.eligibility != nil && !r.eligibility.Before(p.recentFrom)
}

// summarise aggregates the snapshot for date from the gathered inputs.
func (p *population) summarise(in *inputs, date time.Time) *models.PrisonStatistic {
	stat := &models.PrisonStatistic{
		Date:                    date,
		TotalPrisoners:          len(p.residents),
		HighComplexityPrisoners: len(p.residents) - len(p.eligible),
		EligiblePrisoners:       len(p.eligible),
	}

	allocatedAt := make(map[domain.PersonIdentifier]time.Time)
	for _, a := range in.allocations {
		if models.Day(a.AllocatedAt).Equal(date) {
			stat.NewAllocations++
		}
		if a.IsActive() {
			allocatedAt[a.PersonIdentifier] = a.AllocatedAt
		}
	}
	stat.AssignedPrisoners = len(allocatedAt)

	eligibility := make(map[domain.PersonIdentifier]*time.Time, len(p.eligible))
	for _, r := range p.eligible {
		eligibility[r.person] = r.eligibility
	}
	firstEvent := make(map[domain.PersonIdentifier]time.Time)
	lastEvent := make(map[domain.PersonIdentifier]time.Time)
	for person, at := range in.latestByNotes {
		lastEvent[person] = at
	}
	for _, e := range in.events {
		if models.Day(e.OccurredAt).Equal(date) {
			switch e.Type {
			case recordedevent.TypeSession:
				stat.RecordedSessions++
			case recordedevent.TypeEntry:
				stat.RecordedEntries++
			}
		}
		if e.OccurredAt.After(lastEvent[e.PersonIdentifier]) {
			lastEvent[e.PersonIdentifier] = e.OccurredAt
		}
		elig := eligibility[e.PersonIdentifier]
		if elig == nil || e.OccurredAt.Before(*elig) {
			continue
		}
		if first, ok := firstEvent[e.PersonIdentifier]; !ok || e.OccurredAt.Before(first) {
			firstEvent[e.PersonIdentifier] = e.OccurredAt
		}
	}

	var toAllocation, toEvent []int
	for _, r := range p.eligible {
		if !p.isRecent(r) {
			continue
		}
		if at, ok := allocatedAt[r.person]; ok && !models.Day(at).Before(*r.eligibility) {
			toAllocation = append(toAllocation, daysBetween(*r.eligibility, at))
		}
		if at, ok := firstEvent[r.person]; ok {
			toEvent = append(toEvent, daysBetween(*r.eligibility, at))
		}
	}
	stat.AvgReceptionToAllocationDays = average(toAllocation)
	stat.AvgReceptionToRecordedEventDays = average(toEvent)
	stat.EligibleStaff = countActiveStaff(in.staff, in.staffConfig)

	stat.Prisoners = make([]models.PrisonerStatistic, len(p.residents))
	for i, r := range p.residents {
		row := models.PrisonerStatistic{
			PersonIdentifier:          r.person,
			CellLocation:              r.cell,
			AllocationEligibilityDate: r.eligibility,
			HighComplexity:            r.high,
		}
		if _, ok := allocatedAt[r.person]; ok {
			row.Allocated = true
		}
		if at, ok := lastEvent[r.person]; ok {
			row.LastRecordedEventAt = &at
		}
		stat.Prisoners[i] = row
	}
	return stat
}

// countActiveStaff counts role holders whose configuration, if any, is
// active.
func countActiveStaff(staff []gateway.StaffRole, cfg map[domain.StaffID]prisonconfig.StaffConfig) int {
	seen := make(map[domain.StaffID]bool, len(staff))
	for _, s := range staff {
		id := domain.StaffID(s.StaffID)
		if seen[id] {
			continue
		}
		if c, ok := cfg[id]; ok && !c.Status.IsActive() {
			continue
		}
		seen[id] = true
	}
	return len(seen)
}

// daysBetween counts whole calendar days from from to to.
func daysBetween(from, to time.Time) int {
	return int(models.Day(to).Sub(models.Day(from)).Hours() / 24)
}

// average truncates towards zero. Nil when there are no values.
func average(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := sum / len(values)
	return &avg
}
