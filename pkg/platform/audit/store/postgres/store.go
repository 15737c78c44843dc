package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
	txcontext "keyworker/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store writes telemetry events to the audit_events table. Inside a
// transaction the event commits or rolls back with the surrounding work.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, action, policy, person_identifier, prison_code, reason, actor, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Action),
		nullString(string(event.Policy)),
		nullString(event.PersonIdentifier.String()),
		nullString(event.PrisonCode.String()),
		nullString(event.Reason),
		event.Actor,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPerson(ctx context.Context, person domain.PersonIdentifier) ([]audit.Event, error) {
	query := `
		SELECT action, policy, person_identifier, prison_code, reason, actor, occurred_at
		FROM audit_events
		WHERE person_identifier = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, person.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			ev                               audit.Event
			action                           string
			policy, personID, prison, reason sql.NullString
		)
		if err := rows.Scan(&action, &policy, &personID, &prison, &reason, &ev.Actor, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Action = audit.Action(action)
		ev.Policy = domain.Policy(policy.String)
		ev.PersonIdentifier = domain.PersonIdentifier(personID.String)
		ev.PrisonCode = domain.PrisonCode(prison.String)
		ev.Reason = reason.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// DeletePerson runs inside the caller's transaction when there is one, so an
// erasure removes the person's audit trail atomically with their data.
func (s *Store) DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM audit_events WHERE person_identifier = $1`, person.String())
	if err != nil {
		return 0, fmt.Errorf("delete audit events: %w", err)
	}
	return res.RowsAffected()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
