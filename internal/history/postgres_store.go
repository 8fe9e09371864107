package history

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists assessments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the assessments table if it doesn't exist. The goose
// migration in migrations/ carries the same schema for managed deployments.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assessments (
			id               VARCHAR(64) PRIMARY KEY,
			amount           DOUBLE PRECISION NOT NULL DEFAULT 0,
			transaction_type VARCHAR(100) NOT NULL DEFAULT 'unknown',
			location         VARCHAR(200) NOT NULL DEFAULT 'Unknown',
			is_fraud         SMALLINT NOT NULL DEFAULT 0,
			probability      NUMERIC(5,4) NOT NULL CHECK (probability >= 0 AND probability <= 1),
			risk_level       VARCHAR(10) NOT NULL CHECK (risk_level IN ('HIGH', 'MEDIUM', 'LOW')),
			recommendation   VARCHAR(20) NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_created_at
			ON assessments (created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_assessments_high_risk
			ON assessments (created_at DESC) WHERE risk_level = 'HIGH';
	`)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, a *Assessment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, amount, transaction_type, location, is_fraud, probability, risk_level, recommendation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		a.ID,
		a.Amount,
		a.Type,
		a.Location,
		a.IsFraud,
		a.Probability,
		a.RiskLevel,
		a.Recommendation,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, transaction_type, location, is_fraud, probability, risk_level, recommendation, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Assessment
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(&a.ID, &a.Amount, &a.Type, &a.Location, &a.IsFraud, &a.Probability, &a.RiskLevel, &a.Recommendation, &a.CreatedAt); err != nil {
			continue
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
