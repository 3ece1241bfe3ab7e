// Package repository persists jobs and their step log.
//
// Both implementations read the querier from the context via database.GetTx, so
// ClaimDue holds its row locks until the surrounding transaction commits.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/docrelay/internal/database"
	apperrors "github.com/allisson/docrelay/internal/errors"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

const jobColumns = `id, kind, params, status, attempts, last_error, wake_at, created_at, updated_at, completed_at`

// PostgreSQLJobRepository handles job persistence for PostgreSQL.
type PostgreSQLJobRepository struct {
	db *sql.DB
}

// NewPostgreSQLJobRepository creates a new PostgreSQLJobRepository.
func NewPostgreSQLJobRepository(db *sql.DB) *PostgreSQLJobRepository {
	return &PostgreSQLJobRepository{db: db}
}

// Create inserts a new job.
func (r *PostgreSQLJobRepository) Create(ctx context.Context, job *jobDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO jobs (` + jobColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(ctx, query, job.ID, job.Kind, []byte(job.Params), job.Status,
		job.Attempts, job.LastError, job.WakeAt, job.CreatedAt, job.UpdatedAt, job.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create job")
	}
	return nil
}

// Get retrieves a job by id.
func (r *PostgreSQLJobRepository) Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var job jobDomain.Job
	var params []byte
	err := querier.QueryRowContext(ctx, query, id).Scan(&job.ID, &job.Kind, &params, &job.Status,
		&job.Attempts, &job.LastError, &job.WakeAt, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobDomain.ErrJobNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get job")
	}
	job.Params = params

	return &job, nil
}

// ClaimDue locks up to limit non-terminal jobs whose wake time has passed.
// It must run inside a transaction.
func (r *PostgreSQLJobRepository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*jobDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + jobColumns + `
			  FROM jobs
			  WHERE status IN ($1, $2, $3) AND wake_at <= $4
			  ORDER BY wake_at ASC
			  LIMIT $5
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, jobDomain.StatusQueued, jobDomain.StatusSleeping,
		jobDomain.StatusRunning, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim jobs")
	}
	defer rows.Close() //nolint:errcheck

	var jobs []*jobDomain.Job
	for rows.Next() {
		var job jobDomain.Job
		var params []byte
		if err := rows.Scan(&job.ID, &job.Kind, &params, &job.Status, &job.Attempts, &job.LastError,
			&job.WakeAt, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan job")
		}
		job.Params = params
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate jobs")
	}

	return jobs, nil
}

// Update stores the mutable state of a job.
func (r *PostgreSQLJobRepository) Update(ctx context.Context, job *jobDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE jobs
			  SET status = $1, attempts = $2, last_error = $3, wake_at = $4, updated_at = $5, completed_at = $6
			  WHERE id = $7`

	_, err := querier.ExecContext(ctx, query, job.Status, job.Attempts, job.LastError, job.WakeAt,
		job.UpdatedAt, job.CompletedAt, job.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update job")
	}
	return nil
}

// ListSteps returns the recorded steps of a job in completion order.
func (r *PostgreSQLJobRepository) ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobDomain.StepResult, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT job_id, step, result, completed_at
			  FROM job_steps
			  WHERE job_id = $1
			  ORDER BY completed_at ASC`

	rows, err := querier.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list job steps")
	}
	defer rows.Close() //nolint:errcheck

	var steps []*jobDomain.StepResult
	for rows.Next() {
		var step jobDomain.StepResult
		var result []byte
		if err := rows.Scan(&step.JobID, &step.Step, &result, &step.CompletedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan job step")
		}
		step.Result = result
		steps = append(steps, &step)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate job steps")
	}

	return steps, nil
}

// SaveStep records the result of a step, replacing an earlier record of the same step.
func (r *PostgreSQLJobRepository) SaveStep(ctx context.Context, step *jobDomain.StepResult) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO job_steps (job_id, step, result, completed_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (job_id, step) DO UPDATE SET
			  	result = EXCLUDED.result,
			  	completed_at = EXCLUDED.completed_at`

	_, err := querier.ExecContext(ctx, query, step.JobID, step.Step, []byte(step.Result), step.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to save job step")
	}
	return nil
}
