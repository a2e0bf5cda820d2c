package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"print-ticket-server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	owner_id TEXT NOT NULL,
	ticket_number BIGINT NOT NULL UNIQUE,
	documents JSONB NOT NULL,
	price BIGINT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS jobs_owner_idx ON jobs (owner_id);
CREATE SEQUENCE IF NOT EXISTS ticket_numbers;
`

// PostgresJobRepository stores jobs in Postgres. Ticket uniqueness is a
// UNIQUE constraint; ticket numbers come from a database sequence, which
// makes the sequencer transactional and restart safe.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository connects the pool and ensures the schema.
func NewPostgresJobRepository(ctx context.Context, dsn string) (*PostgresJobRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, jobsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresJobRepository{pool: pool}, nil
}

// Sequencer returns the ticket sequencer backed by the same database.
func (r *PostgresJobRepository) Sequencer() *PostgresTicketSequencer {
	return &PostgresTicketSequencer{pool: r.pool}
}

// Close releases the connection pool.
func (r *PostgresJobRepository) Close() {
	r.pool.Close()
}

// Create inserts a new job. A ticket-number collision maps onto
// ErrDuplicateTicket via the unique constraint.
func (r *PostgresJobRepository) Create(ctx context.Context, job *domain.Job) error {
	documents, err := json.Marshal(job.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO jobs (id, owner_id, ticket_number, documents, price, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.OwnerID, job.TicketNumber, documents, job.Price, string(job.Status), job.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateTicket, job.TicketNumber)
		}
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, ticket_number, documents, price, status, created_at
		 FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *PostgresJobRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, ticket_number, documents, price, status, created_at
		 FROM jobs WHERE owner_id = $1 ORDER BY ticket_number`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PostgresJobRepository) GetAll(ctx context.Context) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, ticket_number, documents, price, status, created_at
		 FROM jobs ORDER BY ticket_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PostgresJobRepository) SetStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE jobs SET status = $2 WHERE id = $1
		 RETURNING id, owner_id, ticket_number, documents, price, status, created_at`,
		id, string(status))
	return scanJob(row)
}

func (r *PostgresJobRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job       domain.Job
		documents []byte
		status    string
	)
	err := row.Scan(&job.ID, &job.OwnerID, &job.TicketNumber, &documents, &job.Price, &status, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	if err := json.Unmarshal(documents, &job.Documents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func scanJobs(rows pgx.Rows) ([]*domain.Job, error) {
	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}
	return jobs, nil
}

// PostgresTicketSequencer issues ticket numbers from a database sequence.
// nextval never repeats a value, concurrent callers included, and the
// sequence survives restarts by construction.
type PostgresTicketSequencer struct {
	pool *pgxpool.Pool
}

func (s *PostgresTicketSequencer) Next(ctx context.Context) (int64, error) {
	var next int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('ticket_numbers')`).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to issue ticket number: %w", err)
	}
	return next, nil
}
