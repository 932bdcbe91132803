package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists ledger records in a single append-only table.
// The table carries no UPDATE or DELETE path; List and HasSuccess read in
// insertion order via a serial id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verification_records (
			id          BIGSERIAL PRIMARY KEY,
			ts          TIMESTAMPTZ NOT NULL,
			module      TEXT NOT NULL,
			harness     TEXT NOT NULL,
			status      TEXT NOT NULL,
			seconds     DOUBLE PRECISION NOT NULL,
			bound       BIGINT NOT NULL,
			message     TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS verification_records_harness_idx
			ON verification_records (harness, status);
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_records (ts, module, harness, status, seconds, bound, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Timestamp.UTC(), rec.Module, rec.Harness, string(rec.Status),
		rec.Seconds, int64(rec.Bound), rec.Message,
	)
	if err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `
		SELECT ts, module, harness, status, seconds, bound, message
		FROM verification_records
		WHERE ($1 = '' OR module = $1)
		  AND ($2 = '' OR harness = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, f.Module, f.Harness, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("list ledger records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var status string
		var bound int64
		if err := rows.Scan(&rec.Timestamp, &rec.Module, &rec.Harness,
			&status, &rec.Seconds, &bound, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}
		rec.Status = Status(status)
		rec.Bound = uint64(bound)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) HasSuccess(ctx context.Context, harness string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM verification_records
			WHERE harness = $1 AND status = $2
		)`, harness, string(StatusSuccess)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check harness success: %w", err)
	}
	return exists, nil
}
