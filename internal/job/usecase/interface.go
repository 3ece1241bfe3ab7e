// Package usecase implements the durable job runner.
//
// Workflows are registered per job kind as an ordered list of steps. The runner
// claims due jobs from the repository, executes their pending steps and records
// every step result, so a job can be resumed by any worker at any time.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

// Config holds job runner configuration.
type Config struct {
	Interval      time.Duration
	BatchSize     int
	MaxRetries    int
	RetryInterval time.Duration
	Lease         time.Duration
}

// JobRepository persists jobs and their step log.
type JobRepository interface {
	Create(ctx context.Context, job *jobDomain.Job) error
	Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error)
	// ClaimDue locks due, non-terminal jobs. It is called inside a transaction.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*jobDomain.Job, error)
	Update(ctx context.Context, job *jobDomain.Job) error
	ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobDomain.StepResult, error)
	SaveStep(ctx context.Context, step *jobDomain.StepResult) error
}

// StepFunc executes one step. The returned value is stored as the step result and
// must be JSON encodable; nil is stored as an empty object.
type StepFunc func(ctx context.Context, exec *Execution) (any, error)

// Step is one unit of a workflow.
type Step struct {
	Name string

	// Run executes the step. A step without Run is a sleep step that parks the
	// job for Sleep, measured from the first time the job reaches it.
	Run   StepFunc
	Sleep time.Duration

	// MaxAttempts overrides Config.MaxRetries for this step.
	MaxAttempts int

	// ContinueOnError lets the job go on after the step exhausted its attempts.
	ContinueOnError bool
}

// UseCase is the job API used by the rest of the application.
type UseCase interface {
	// Create persists a queued job of kind that is due immediately.
	Create(ctx context.Context, kind string, params any) (*jobDomain.Job, error)

	// Get returns a job by id.
	Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error)

	// Steps returns the recorded step results of a job.
	Steps(ctx context.Context, id uuid.UUID) ([]*jobDomain.StepResult, error)

	// Start runs ProcessDue on every tick until ctx is cancelled.
	Start(ctx context.Context) error

	// ProcessDue claims and executes one batch of due jobs.
	ProcessDue(ctx context.Context) error
}
