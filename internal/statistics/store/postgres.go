package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"keyworker/internal/platform/postgres"
	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	"keyworker/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// PostgresStore persists statistics in prison_statistic and
// prisoner_statistic. Save is expected to run inside a transaction so the
// parent and its rows land together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) (bool, error) {
	var exists bool
	err := postgres.ConnFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM prison_statistic
			WHERE prison_code = $1 AND policy = $2 AND statistic_date = $3
		)
	`, prison.String(), policy.String(), models.Day(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check prison statistic: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Save(ctx context.Context, stat *models.PrisonStatistic) error {
	conn := postgres.ConnFrom(ctx, s.db)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO prison_statistic (
			id, prison_code, policy, statistic_date, total_prisoners, high_complexity_prisoners,
			eligible_prisoners, assigned_prisoners, new_allocations, eligible_staff,
			recorded_sessions, recorded_entries, avg_reception_to_allocation_days,
			avg_reception_to_recorded_event_days, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, stat.ID, stat.PrisonCode.String(), stat.Policy.String(), models.Day(stat.Date),
		stat.TotalPrisoners, stat.HighComplexityPrisoners, stat.EligiblePrisoners, stat.AssignedPrisoners,
		stat.NewAllocations, stat.EligibleStaff, stat.RecordedSessions, stat.RecordedEntries,
		nullInt(stat.AvgReceptionToAllocationDays), nullInt(stat.AvgReceptionToRecordedEventDays), stat.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert prison statistic: %w", err)
	}

	for _, p := range stat.Prisoners {
		_, err := conn.ExecContext(ctx, `
			INSERT INTO prisoner_statistic (
				id, prison_statistic_id, person_identifier, cell_location,
				allocation_eligibility_date, high_complexity, allocated, last_recorded_event_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), stat.ID, p.PersonIdentifier.String(), nullString(p.CellLocation),
			p.AllocationEligibilityDate, p.HighComplexity, p.Allocated, p.LastRecordedEventAt)
		if err != nil {
			return fmt.Errorf("insert prisoner statistic: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, from, to time.Time) ([]*models.PrisonStatistic, error) {
	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, statistic_date, total_prisoners, high_complexity_prisoners, eligible_prisoners,
			assigned_prisoners, new_allocations, eligible_staff, recorded_sessions, recorded_entries,
			avg_reception_to_allocation_days, avg_reception_to_recorded_event_days, created_at
		FROM prison_statistic
		WHERE prison_code = $1 AND policy = $2 AND statistic_date BETWEEN $3 AND $4
		ORDER BY statistic_date
	`, prison.String(), policy.String(), models.Day(from), models.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query prison statistics: %w", err)
	}
	defer rows.Close()

	var out []*models.PrisonStatistic
	for rows.Next() {
		var (
			stat                        = models.PrisonStatistic{PrisonCode: prison, Policy: policy}
			avgAllocation, avgRecording sql.NullInt64
		)
		err := rows.Scan(&stat.ID, &stat.Date, &stat.TotalPrisoners, &stat.HighComplexityPrisoners,
			&stat.EligiblePrisoners, &stat.AssignedPrisoners, &stat.NewAllocations, &stat.EligibleStaff,
			&stat.RecordedSessions, &stat.RecordedEntries, &avgAllocation, &avgRecording, &stat.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan prison statistic: %w", err)
		}
		stat.Date = models.Day(stat.Date)
		stat.AvgReceptionToAllocationDays = intPtr(avgAllocation)
		stat.AvgReceptionToRecordedEventDays = intPtr(avgRecording)
		out = append(out, &stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prison statistics: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Prisoners(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) ([]models.PrisonerStatistic, error) {
	var id uuid.UUID
	err := postgres.ConnFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT id FROM prison_statistic
		WHERE prison_code = $1 AND policy = $2 AND statistic_date = $3
	`, prison.String(), policy.String(), models.Day(date)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find prison statistic: %w", err)
	}

	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT person_identifier, cell_location, allocation_eligibility_date, high_complexity, allocated, last_recorded_event_at
		FROM prisoner_statistic
		WHERE prison_statistic_id = $1
		ORDER BY person_identifier
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query prisoner statistics: %w", err)
	}
	defer rows.Close()

	var out []models.PrisonerStatistic
	for rows.Next() {
		var (
			p                   models.PrisonerStatistic
			person              string
			cell                sql.NullString
			eligible, lastEvent sql.NullTime
		)
		if err := rows.Scan(&person, &cell, &eligible, &p.HighComplexity, &p.Allocated, &lastEvent); err != nil {
			return nil, fmt.Errorf("scan prisoner statistic: %w", err)
		}
		p.PersonIdentifier = domain.PersonIdentifier(person)
		p.CellLocation = cell.String
		if eligible.Valid {
			d := models.Day(eligible.Time)
			p.AllocationEligibilityDate = &d
		}
		if lastEvent.Valid {
			p.LastRecordedEventAt = &lastEvent.Time
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prisoner statistics: %w", err)
	}
	return out, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
