package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"keyworker/internal/allocation/models"
	"keyworker/internal/platform/postgres"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"
	"keyworker/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists allocations. Every query carries the policy
// explicitly except erasure and subject access, which span policies.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const allocationColumns = `id, policy, person_identifier, prison_code, staff_id, allocated_at, allocated_by,
	allocation_reason, deallocated_at, deallocated_by, deallocation_reason`

func (s *PostgresStore) Create(ctx context.Context, a *models.Allocation) error {
	query := `
		INSERT INTO allocation (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var deallocatedAt sql.NullTime
	if a.DeallocatedAt != nil {
		deallocatedAt = sql.NullTime{Time: *a.DeallocatedAt, Valid: true}
	}
	_, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, query,
		a.ID,
		string(a.Policy),
		a.PersonIdentifier.String(),
		a.PrisonCode.String(),
		int64(a.StaffID),
		a.AllocatedAt,
		a.AllocatedBy,
		string(a.AllocationReason),
		deallocatedAt,
		nullString(a.DeallocatedBy),
		nullString(string(a.DeallocationReason)),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert allocation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Allocation, error) {
	row := postgres.ConnFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM allocation WHERE id = $1`, id)
	a, err := scanAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find allocation: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListActive(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	return s.list(ctx, `
		SELECT `+allocationColumns+` FROM allocation
		WHERE policy = $1 AND person_identifier = $2 AND deallocated_at IS NULL
		ORDER BY allocated_at
	`, string(policy), person.String())
}

// Deallocate closes the allocation only if it is still active. Zero rows
// affected means another writer closed it first.
func (s *PostgresStore) Deallocate(ctx context.Context, id uuid.UUID, at time.Time, by string, reason referencedata.DeallocationReason) error {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE allocation
		SET deallocated_at = $2, deallocated_by = $3, deallocation_reason = $4
		WHERE id = $1 AND deallocated_at IS NULL
	`, id, at, by, string(reason))
	if err != nil {
		return fmt.Errorf("deallocate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deallocate rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, policy domain.Policy, person domain.PersonIdentifier) ([]*models.Allocation, error) {
	return s.list(ctx, `
		SELECT `+allocationColumns+` FROM allocation
		WHERE policy = $1 AND person_identifier = $2
		ORDER BY allocated_at DESC
	`, string(policy), person.String())
}

func (s *PostgresStore) ListForPersons(ctx context.Context, policy domain.Policy, prison domain.PrisonCode, persons []domain.PersonIdentifier) ([]*models.Allocation, error) {
	if len(persons) == 0 {
		return nil, nil
	}
	return s.list(ctx, `
		SELECT `+allocationColumns+` FROM allocation
		WHERE policy = $1 AND prison_code = $2 AND person_identifier = ANY($3::text[])
		ORDER BY allocated_at
	`, string(policy), prison.String(), pq.Array(personStrings(persons)))
}

func (s *PostgresStore) ListForSubjectAccess(ctx context.Context, person domain.PersonIdentifier, from, to *time.Time) ([]*models.Allocation, error) {
	return s.list(ctx, `
		SELECT `+allocationColumns+` FROM allocation
		WHERE person_identifier = $1
		  AND ($2::timestamptz IS NULL OR allocated_at >= $2)
		  AND ($3::timestamptz IS NULL OR allocated_at <= $3)
		ORDER BY allocated_at
	`, person.String(), nullTime(from), nullTime(to))
}

func (s *PostgresStore) ReassignPerson(ctx context.Context, policy domain.Policy, from, to domain.PersonIdentifier) (int64, error) {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE allocation SET person_identifier = $3
		WHERE policy = $1 AND person_identifier = $2
	`, string(policy), from.String(), to.String())
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, sentinel.ErrConflict
		}
		return 0, fmt.Errorf("reassign allocations: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error) {
	res, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM allocation WHERE person_identifier = $1`, person.String())
	if err != nil {
		return 0, fmt.Errorf("delete allocations: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Allocation, error) {
	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	var out []*models.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAllocation(row rowScanner) (*models.Allocation, error) {
	var (
		a                                        models.Allocation
		policy, person, prison, allocationReason string
		staffID                                  int64
		deallocatedAt                            sql.NullTime
		deallocatedBy, deallocationReason        sql.NullString
	)
	if err := row.Scan(&a.ID, &policy, &person, &prison, &staffID, &a.AllocatedAt, &a.AllocatedBy,
		&allocationReason, &deallocatedAt, &deallocatedBy, &deallocationReason); err != nil {
		return nil, err
	}
	a.Policy = domain.Policy(policy)
	a.PersonIdentifier = domain.PersonIdentifier(person)
	a.PrisonCode = domain.PrisonCode(prison)
	a.StaffID = domain.StaffID(staffID)
	a.AllocationReason = referencedata.AllocationReason(allocationReason)
	if deallocatedAt.Valid {
		t := deallocatedAt.Time
		a.DeallocatedAt = &t
	}
	a.DeallocatedBy = deallocatedBy.String
	a.DeallocationReason = referencedata.DeallocationReason(deallocationReason.String)
	return &a, nil
}

func personStrings(persons []domain.PersonIdentifier) []string {
	out := make([]string, len(persons))
	for i, p := range persons {
		out[i] = p.String()
	}
	return out
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
