package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/docrelay/internal/database"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	"github.com/allisson/docrelay/internal/metrics"
)

// Step outcomes reported through BusinessMetrics.RecordJobStep.
const (
	OutcomeSuccess  = "success"
	OutcomeRetry    = "retry"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeSleeping = "sleeping"
)

// Runner executes registered workflows over persisted jobs.
type Runner struct {
	config    Config
	txManager database.TxManager
	repo      JobRepository
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	workflows map[string][]Step
}

// NewRunner creates a Runner. Zero config values fall back to defaults.
func NewRunner(
	config Config,
	txManager database.TxManager,
	repo JobRepository,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *Runner {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.Lease <= 0 {
		config.Lease = 5 * time.Minute
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Runner{
		config:    config,
		txManager: txManager,
		repo:      repo,
		metrics:   businessMetrics,
		logger:    logger,
		now:       time.Now,
		workflows: make(map[string][]Step),
	}
}

// WithClock replaces the time source used for wake times and leases.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Register defines the workflow of kind. Registering a kind twice replaces it.
func (r *Runner) Register(kind string, steps []Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[kind] = steps
}

func (r *Runner) workflow(kind string) ([]Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	steps, ok := r.workflows[kind]
	return steps, ok
}

func (r *Runner) Create(ctx context.Context, kind string, params any) (*jobDomain.Job, error) {
	if _, ok := r.workflow(kind); !ok {
		return nil, fmt.Errorf("%w: %s", jobDomain.ErrUnknownKind, kind)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	job := &jobDomain.Job{
		ID:        id,
		Kind:      kind,
		Params:    raw,
		Status:    jobDomain.StatusQueued,
		WakeAt:    now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.repo.Create(ctx, job); err != nil {
		r.metrics.RecordOperation(ctx, metrics.DomainJob, "job_create", "error")
		return nil, err
	}

	r.metrics.RecordOperation(ctx, metrics.DomainJob, "job_create", "success")
	r.logger.Info("job created", slog.String("job_id", id.String()), slog.String("kind", kind))

	return job, nil
}

func (r *Runner) Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error) {
	return r.repo.Get(ctx, id)
}

func (r *Runner) Steps(ctx context.Context, id uuid.UUID) ([]*jobDomain.StepResult, error) {
	if _, err := r.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return r.repo.ListSteps(ctx, id)
}

// Start runs the claim loop until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("starting job runner",
		slog.Duration("interval", r.config.Interval),
		slog.Int("batch_size", r.config.BatchSize),
	)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping job runner")
			return ctx.Err()
		case <-ticker.C:
			if err := r.ProcessDue(ctx); err != nil {
				r.logger.Error("failed to process jobs", slog.Any("error", err))
			}
		}
	}
}

// ProcessDue claims a batch of due jobs, leases them and executes them
// concurrently. It returns the first execution error.
func (r *Runner) ProcessDue(ctx context.Context) error {
	var claimed []*jobDomain.Job

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		now := r.now().UTC()
		jobs, err := r.repo.ClaimDue(ctx, now, r.config.BatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			job.Status = jobDomain.StatusRunning
			job.WakeAt = now.Add(r.config.Lease)
			job.UpdatedAt = now
			if err := r.repo.Update(ctx, job); err != nil {
				return err
			}
		}

		claimed = jobs
		return nil
	})
	if err != nil {
		return err
	}

	if len(claimed) == 0 {
		return nil
	}
	r.logger.Info("processing jobs", slog.Int("count", len(claimed)))

	var g errgroup.Group
	for _, job := range claimed {
		g.Go(func() error {
			if err := r.execute(ctx, job); err != nil {
				r.logger.Error("failed to execute job",
					slog.String("job_id", job.ID.String()),
					slog.String("kind", job.Kind),
					slog.Any("error", err),
				)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// execute walks the workflow of job. Errors returned here are storage failures;
// the job keeps its lease and becomes due again once it expires.
func (r *Runner) execute(ctx context.Context, job *jobDomain.Job) error {
	steps, ok := r.workflow(job.Kind)
	if !ok {
		return r.fail(ctx, job, "", fmt.Errorf("%w: %s", jobDomain.ErrUnknownKind, job.Kind))
	}

	recorded, err := r.repo.ListSteps(ctx, job.ID)
	if err != nil {
		return err
	}

	exec := &Execution{Job: job, results: make(map[string]json.RawMessage, len(recorded))}
	for _, step := range recorded {
		exec.results[step.Step] = step.Result
	}

	for _, step := range steps {
		if raw, done := exec.results[step.Name]; done {
			if step.Run == nil {
				var sleep jobDomain.SleepRecord
				if err := json.Unmarshal(raw, &sleep); err != nil {
					return r.fail(ctx, job, step.Name, fmt.Errorf("corrupt sleep record: %w", err))
				}
				if sleep.Until.After(r.now()) {
					return r.park(ctx, job, sleep.Until)
				}
			}
			continue
		}

		if step.Run == nil {
			until := r.now().Add(step.Sleep).UTC()
			if err := r.record(ctx, exec, step.Name, jobDomain.SleepRecord{Until: until}); err != nil {
				return err
			}
			if until.After(r.now()) {
				r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeSleeping)
				return r.park(ctx, job, until)
			}
			continue
		}

		output, runErr := step.Run(ctx, exec)
		if runErr != nil {
			if jobDomain.IsPermanent(runErr) {
				r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeFailed)
				return r.fail(ctx, job, step.Name, runErr)
			}

			job.Attempts++
			message := runErr.Error()
			job.LastError = &message

			if job.Attempts < r.maxAttempts(step) {
				r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeRetry)
				return r.retry(ctx, job, step.Name, runErr)
			}

			if !step.ContinueOnError {
				r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeFailed)
				return r.fail(ctx, job, step.Name, runErr)
			}

			r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeSkipped)
			r.logger.Warn("job step failed, continuing",
				slog.String("job_id", job.ID.String()),
				slog.String("step", step.Name),
				slog.Any("error", runErr),
			)
			output = map[string]string{"error": message}
		} else {
			r.metrics.RecordJobStep(ctx, job.Kind, step.Name, OutcomeSuccess)
		}

		if err := r.record(ctx, exec, step.Name, output); err != nil {
			return err
		}
		job.Attempts = 0
	}

	return r.complete(ctx, job)
}

func (r *Runner) maxAttempts(step Step) int {
	if step.MaxAttempts > 0 {
		return step.MaxAttempts
	}
	return r.config.MaxRetries
}

func (r *Runner) record(ctx context.Context, exec *Execution, step string, output any) error {
	raw := json.RawMessage(`{}`)
	if output != nil {
		encoded, err := json.Marshal(output)
		if err != nil {
			return fmt.Errorf("failed to encode result of step %q: %w", step, err)
		}
		raw = encoded
	}

	if err := r.repo.SaveStep(ctx, &jobDomain.StepResult{
		JobID:       exec.Job.ID,
		Step:        step,
		Result:      raw,
		CompletedAt: r.now().UTC(),
	}); err != nil {
		return err
	}

	exec.results[step] = raw
	return nil
}

func (r *Runner) park(ctx context.Context, job *jobDomain.Job, until time.Time) error {
	job.Status = jobDomain.StatusSleeping
	job.WakeAt = until
	job.UpdatedAt = r.now().UTC()

	r.logger.Info("job sleeping", slog.String("job_id", job.ID.String()), slog.Time("until", until))
	return r.repo.Update(ctx, job)
}

func (r *Runner) retry(ctx context.Context, job *jobDomain.Job, step string, cause error) error {
	now := r.now().UTC()
	job.Status = jobDomain.StatusQueued
	job.WakeAt = now.Add(r.config.RetryInterval)
	job.UpdatedAt = now

	r.logger.Warn("job step failed, retrying",
		slog.String("job_id", job.ID.String()),
		slog.String("step", step),
		slog.Int("attempts", job.Attempts),
		slog.Any("error", cause),
	)
	return r.repo.Update(ctx, job)
}

func (r *Runner) fail(ctx context.Context, job *jobDomain.Job, step string, cause error) error {
	now := r.now().UTC()
	message := cause.Error()
	job.Status = jobDomain.StatusFailed
	job.LastError = &message
	job.WakeAt = now
	job.UpdatedAt = now
	job.CompletedAt = &now

	r.metrics.RecordOperation(ctx, metrics.DomainJob, "job_run", "error")
	r.logger.Error("job failed",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", job.Kind),
		slog.String("step", step),
		slog.Any("error", cause),
	)
	return r.repo.Update(ctx, job)
}

func (r *Runner) complete(ctx context.Context, job *jobDomain.Job) error {
	now := r.now().UTC()
	job.Status = jobDomain.StatusComplete
	job.WakeAt = now
	job.UpdatedAt = now
	job.CompletedAt = &now

	r.metrics.RecordOperation(ctx, metrics.DomainJob, "job_run", "success")
	r.logger.Info("job complete", slog.String("job_id", job.ID.String()), slog.String("kind", job.Kind))
	return r.repo.Update(ctx, job)
}

var _ UseCase = (*Runner)(nil)
