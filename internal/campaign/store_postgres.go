package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"veriseq/internal/ledger"
	dErrors "veriseq/pkg/domain-errors"
)

// PostgresStore persists campaigns in Postgres. The harness-level summary
// is denormalized as JSONB; per-harness records belong to the ledger.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS campaigns (
			id          UUID PRIMARY KEY,
			space       TEXT NOT NULL,
			chunks      INT NOT NULL,
			resume      BOOLEAN NOT NULL,
			state       TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			started_at  TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			skipped     INT NOT NULL DEFAULT 0,
			summary     JSONB NOT NULL DEFAULT '{}',
			error       TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure campaign schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, c Campaign) error {
	summary, err := json.Marshal(c.Summary)
	if err != nil {
		return fmt.Errorf("marshal campaign summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO campaigns (id, space, chunks, resume, state, created_at,
			started_at, finished_at, skipped, summary, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Space, c.Chunks, c.Resume, string(c.State), c.CreatedAt,
		c.StartedAt, c.FinishedAt, c.Skipped, summary, c.Error,
	)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c Campaign) error {
	summary, err := json.Marshal(c.Summary)
	if err != nil {
		return fmt.Errorf("marshal campaign summary: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE campaigns
		SET state = $2, started_at = $3, finished_at = $4, skipped = $5,
			summary = $6, error = $7
		WHERE id = $1`,
		c.ID, string(c.State), c.StartedAt, c.FinishedAt, c.Skipped, summary, c.Error,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", c.ID)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Campaign, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, space, chunks, resume, state, created_at,
			started_at, finished_at, skipped, summary, error
		FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", id)
	}
	return c, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Campaign, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, space, chunks, resume, state, created_at,
			started_at, finished_at, skipped, summary, error
		FROM campaigns ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	var state string
	var summary []byte
	if err := row.Scan(&c.ID, &c.Space, &c.Chunks, &c.Resume, &state, &c.CreatedAt,
		&c.StartedAt, &c.FinishedAt, &c.Skipped, &summary, &c.Error); err != nil {
		return Campaign{}, err
	}
	c.State = State(state)
	c.Summary = ledger.Summary{}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &c.Summary); err != nil {
			return Campaign{}, fmt.Errorf("unmarshal campaign summary: %w", err)
		}
	}
	return c, nil
}
