package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	txcontext "keyworker/pkg/platform/tx"

	"github.com/jackc/pgx/v5/pgconn"
)

// TxRunner opens a database transaction per unit of work and carries it on
// the context; stores pick it up through txcontext.From.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (t *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel, err := txcontext.Bound(ctx, t.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// Conn is the subset of *sql.DB and *sql.Tx the stores use.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ConnFrom returns the transaction on ctx, or db when there is none.
func ConnFrom(ctx context.Context, db *sql.DB) Conn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique or exclusion constraint
// failure raised by Postgres.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
