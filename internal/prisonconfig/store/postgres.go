package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"keyworker/internal/platform/postgres"
	"keyworker/internal/prisonconfig"
	"keyworker/internal/referencedata"
	"keyworker/pkg/domain"

	"github.com/lib/pq"
)

// PostgresStore persists configuration in prison_configuration and
// staff_configuration.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SavePrison(ctx context.Context, cfg prisonconfig.PrisonConfig) error {
	_, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO prison_configuration (prison_code, policy, enabled, has_prisoners_with_high_complexity, allow_auto_allocation, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (prison_code, policy) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			has_prisoners_with_high_complexity = EXCLUDED.has_prisoners_with_high_complexity,
			allow_auto_allocation = EXCLUDED.allow_auto_allocation,
			capacity = EXCLUDED.capacity
	`, cfg.PrisonCode.String(), cfg.Policy.String(), cfg.Enabled, cfg.HasPrisonersWithHighComplexity, cfg.AllowAutoAllocation, cfg.Capacity)
	if err != nil {
		return fmt.Errorf("save prison configuration: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveStaff(ctx context.Context, cfg prisonconfig.StaffConfig) error {
	_, err := postgres.ConnFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO staff_configuration (staff_id, policy, status, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (staff_id, policy) DO UPDATE SET
			status = EXCLUDED.status,
			capacity = EXCLUDED.capacity
	`, int64(cfg.StaffID), cfg.Policy.String(), string(cfg.Status), cfg.Capacity)
	if err != nil {
		return fmt.Errorf("save staff configuration: %w", err)
	}
	return nil
}

// FindPrison returns the stored configuration or the disabled default.
func (s *PostgresStore) FindPrison(ctx context.Context, prison domain.PrisonCode, policy domain.Policy) (prisonconfig.PrisonConfig, error) {
	cfg := prisonconfig.PrisonConfig{PrisonCode: prison, Policy: policy}
	err := postgres.ConnFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT enabled, has_prisoners_with_high_complexity, allow_auto_allocation, capacity
		FROM prison_configuration
		WHERE prison_code = $1 AND policy = $2
	`, prison.String(), policy.String()).Scan(&cfg.Enabled, &cfg.HasPrisonersWithHighComplexity, &cfg.AllowAutoAllocation, &cfg.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return prisonconfig.Default(prison, policy), nil
	}
	if err != nil {
		return prisonconfig.PrisonConfig{}, fmt.Errorf("find prison configuration: %w", err)
	}
	return cfg, nil
}

func (s *PostgresStore) ListEnabled(ctx context.Context, policy domain.Policy) ([]prisonconfig.PrisonConfig, error) {
	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT prison_code, has_prisoners_with_high_complexity, allow_auto_allocation, capacity
		FROM prison_configuration
		WHERE policy = $1 AND enabled
		ORDER BY prison_code
	`, policy.String())
	if err != nil {
		return nil, fmt.Errorf("list enabled prisons: %w", err)
	}
	defer rows.Close()

	var out []prisonconfig.PrisonConfig
	for rows.Next() {
		cfg := prisonconfig.PrisonConfig{Policy: policy, Enabled: true}
		var code string
		if err := rows.Scan(&code, &cfg.HasPrisonersWithHighComplexity, &cfg.AllowAutoAllocation, &cfg.Capacity); err != nil {
			return nil, fmt.Errorf("scan prison configuration: %w", err)
		}
		cfg.PrisonCode = domain.PrisonCode(code)
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prison configuration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListStaff(ctx context.Context, policy domain.Policy, ids []domain.StaffID) (map[domain.StaffID]prisonconfig.StaffConfig, error) {
	out := make(map[domain.StaffID]prisonconfig.StaffConfig)
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	rows, err := postgres.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT staff_id, status, capacity
		FROM staff_configuration
		WHERE policy = $1 AND staff_id = ANY($2::bigint[])
	`, policy.String(), pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list staff configuration: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			status string
			cfg    = prisonconfig.StaffConfig{Policy: policy}
		)
		if err := rows.Scan(&id, &status, &cfg.Capacity); err != nil {
			return nil, fmt.Errorf("scan staff configuration: %w", err)
		}
		cfg.StaffID = domain.StaffID(id)
		cfg.Status = referencedata.StaffStatus(status)
		out[cfg.StaffID] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff configuration: %w", err)
	}
	return out, nil
}
