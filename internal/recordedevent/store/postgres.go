package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"keyworker/internal/platform/postgres"
	"keyworker/internal/recordedevent"
	"keyworker/pkg/domain"

	"github.com/lib/pq"
)

// PostgresStore persists recorded events in recorded_event.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert inserts or refreshes the row for (policy, case note id).
func (s *PostgresStore) Upsert(ctx context.Context, e *recordedevent.RecordedEvent) error {
	var staffID sql.NullInt64
	if e.StaffID != nil {
		staffID = sql.NullInt64{Int64: int64(*e.StaffID), Valid: true}
	}
	_, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO recorded_event (id, case_note_id, policy, person_identifier, prison_code, type, occurred_at, staff_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (policy, case_note_id) DO UPDATE SET
			person_identifier = EXCLUDED.person_identifier,
			prison_code = EXCLUDED.prison_code,
			type = EXCLUDED.type,
			occurred_at = EXCLUDED.occurred_at,
			staff_id = EXCLUDED.staff_id
	`, e.ID, e.CaseNoteID, string(e.Policy), e.PersonIdentifier.String(), e.PrisonCode.String(),
		string(e.Type), e.OccurredAt, staffID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert recorded event: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByCaseNote(ctx context.Context, caseNoteID string) (int64, error) {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM recorded_event WHERE case_note_id = $1`, caseNoteID)
	if err != nil {
		return 0, fmt.Errorf("delete recorded event: %w", err)
	}
	return res.RowsAffected()
}

// ListForPersons returns events in [from, to).
func (s *PostgresStore) ListForPersons(ctx context.Context, policy domain.Policy, persons []domain.PersonIdentifier, from, to time.Time) ([]*recordedevent.RecordedEvent, error) {
	if len(persons) == 0 {
		return nil, nil
	}
	ids := make([]string, len(persons))
	for i, p := range persons {
		ids[i] = p.String()
	}
	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_note_id, policy, person_identifier, prison_code, type, occurred_at, staff_id, created_at
		FROM recorded_event
		WHERE policy = $1 AND person_identifier = ANY($2::text[]) AND occurred_at >= $3 AND occurred_at < $4
		ORDER BY occurred_at
	`, string(policy), pq.Array(ids), from, to)
	if err != nil {
		return nil, fmt.Errorf("query recorded events: %w", err)
	}
	defer rows.Close()

	var out []*recordedevent.RecordedEvent
	for rows.Next() {
		var (
			e                              recordedevent.RecordedEvent
			policyCode, person, prison, tp string
			staffID                        sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.CaseNoteID, &policyCode, &person, &prison, &tp, &e.OccurredAt, &staffID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recorded event: %w", err)
		}
		e.Policy = domain.Policy(policyCode)
		e.PersonIdentifier = domain.PersonIdentifier(person)
		e.PrisonCode = domain.PrisonCode(prison)
		e.Type = recordedevent.Type(tp)
		if staffID.Valid {
			id := domain.StaffID(staffID.Int64)
			e.StaffID = &id
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recorded events: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ReassignPerson(ctx context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error) {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE recorded_event SET person_identifier = $3
		WHERE policy = $1 AND person_identifier = $2
	`, string(policy), from.String(), to.String())
	if err != nil {
		return 0, fmt.Errorf("reassign recorded events: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error) {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM recorded_event WHERE person_identifier = $1`, person.String())
	if err != nil {
		return 0, fmt.Errorf("delete recorded events: %w", err)
	}
	return res.RowsAffected()
}
