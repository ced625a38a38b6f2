// Package database is the persistence gateway: idempotent storage of job
// records keyed by the derived job id. The scrape loop never issues raw
// queries beyond these operations.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anton-sementsov/parser-upw/internal/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode do not take prepared
	// statements; exec mode also gives per-statement autocommit, which is
	// the durability granularity the scrape loop relies on.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the jobs table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS jobs (
			job_id          TEXT PRIMARY KEY,
			job_url         TEXT NOT NULL,
			job_title       TEXT NOT NULL,
			posted_date     TIMESTAMPTZ,
			job_description TEXT NOT NULL DEFAULT '',
			job_tags        JSONB NOT NULL DEFAULT '[]',
			job_proposals   TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CountByID reports how many rows exist for a job id (0 or 1).
func (r *Repository) CountByID(ctx context.Context, jobID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM jobs WHERE job_id = $1", jobID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count job %s: %w", jobID, err)
	}
	return count, nil
}

// Insert stores a record for the first time. Title, url and description are
// written here and never mutated afterwards.
func (r *Repository) Insert(ctx context.Context, record models.JobRecord) error {
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO jobs (job_id, job_url, job_title, posted_date, job_description, job_tags, job_proposals)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Exec(ctx, query,
		record.ID, record.URL, record.Title, record.PostedAt,
		record.Description, tagsJSON, record.Proposals)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", record.ID, err)
	}
	return nil
}

// UpdateProposals mutates only the proposals field and the updated-at
// timestamp of an already-known record.
func (r *Repository) UpdateProposals(ctx context.Context, jobID, proposals string, updatedAt time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE jobs SET job_proposals = $1, updated_at = $2 WHERE job_id = $3",
		proposals, updatedAt, jobID)
	if err != nil {
		return fmt.Errorf("failed to update proposals for job %s: %w", jobID, err)
	}
	return nil
}
