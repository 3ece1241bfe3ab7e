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

// MySQLJobRepository handles job persistence for MySQL. Ids are stored as BINARY(16).
type MySQLJobRepository struct {
	db *sql.DB
}

// NewMySQLJobRepository creates a new MySQLJobRepository.
func NewMySQLJobRepository(db *sql.DB) *MySQLJobRepository {
	return &MySQLJobRepository{db: db}
}

// Create inserts a new job.
func (r *MySQLJobRepository) Create(ctx context.Context, job *jobDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO jobs (` + jobColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := job.ID.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, idBytes, job.Kind, []byte(job.Params), job.Status,
		job.Attempts, job.LastError, job.WakeAt, job.CreatedAt, job.UpdatedAt, job.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create job")
	}
	return nil
}

// Get retrieves a job by id.
func (r *MySQLJobRepository) Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	job, err := scanMySQLJob(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobDomain.ErrJobNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get job")
	}
	return job, nil
}

// ClaimDue locks up to limit non-terminal jobs whose wake time has passed.
// It must run inside a transaction.
func (r *MySQLJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*jobDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + jobColumns + `
			  FROM jobs
			  WHERE status IN (?, ?, ?) AND wake_at <= ?
			  ORDER BY wake_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, jobDomain.StatusQueued, jobDomain.StatusSleeping,
		jobDomain.StatusRunning, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim jobs")
	}
	defer rows.Close() //nolint:errcheck

	var jobs []*jobDomain.Job
	for rows.Next() {
		job, err := scanMySQLJob(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate jobs")
	}

	return jobs, nil
}

// Update stores the mutable state of a job.
func (r *MySQLJobRepository) Update(ctx context.Context, job *jobDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := job.ID.MarshalBinary()
	if err != nil {
		return err
	}

	query := `UPDATE jobs
			  SET status = ?, attempts = ?, last_error = ?, wake_at = ?, updated_at = ?, completed_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, job.Status, job.Attempts, job.LastError, job.WakeAt,
		job.UpdatedAt, job.CompletedAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update job")
	}
	return nil
}

// ListSteps returns the recorded steps of a job in completion order.
func (r *MySQLJobRepository) ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobDomain.StepResult, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := jobID.MarshalBinary()
	if err != nil {
		return nil, err
	}

	query := `SELECT job_id, step, result, completed_at
			  FROM job_steps
			  WHERE job_id = ?
			  ORDER BY completed_at ASC`

	rows, err := querier.QueryContext(ctx, query, idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list job steps")
	}
	defer rows.Close() //nolint:errcheck

	var steps []*jobDomain.StepResult
	for rows.Next() {
		var step jobDomain.StepResult
		var stepJobID, result []byte
		if err := rows.Scan(&stepJobID, &step.Step, &result, &step.CompletedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan job step")
		}
		if err := step.JobID.UnmarshalBinary(stepJobID); err != nil {
			return nil, err
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
func (r *MySQLJobRepository) SaveStep(ctx context.Context, step *jobDomain.StepResult) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := step.JobID.MarshalBinary()
	if err != nil {
		return err
	}

	query := `INSERT INTO job_steps (job_id, step, result, completed_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE result = VALUES(result), completed_at = VALUES(completed_at)`

	_, err = querier.ExecContext(ctx, query, idBytes, step.Step, []byte(step.Result), step.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to save job step")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLJob(row rowScanner) (*jobDomain.Job, error) {
	var job jobDomain.Job
	var idBytes, params []byte

	err := row.Scan(&idBytes, &job.Kind, &params, &job.Status, &job.Attempts, &job.LastError,
		&job.WakeAt, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}

	if err := job.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}
	job.Params = params

	return &job, nil
}
