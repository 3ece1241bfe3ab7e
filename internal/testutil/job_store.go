package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

// JobStore is an in-memory job repository. ClaimDue takes no locks, so callers
// must not run ProcessDue concurrently against one store.
type JobStore struct {
	mu    sync.Mutex
	jobs  map[uuid.UUID]jobDomain.Job
	steps map[uuid.UUID][]jobDomain.StepResult
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:  make(map[uuid.UUID]jobDomain.Job),
		steps: make(map[uuid.UUID][]jobDomain.StepResult),
	}
}

func (s *JobStore) Create(ctx context.Context, job *jobDomain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, jobDomain.ErrJobNotFound
	}
	return &job, nil
}

func (s *JobStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*jobDomain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*jobDomain.Job
	for _, job := range s.jobs {
		if job.Status.IsTerminal() || job.WakeAt.After(now) {
			continue
		}
		claimed := job
		due = append(due, &claimed)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].WakeAt.Before(due[j].WakeAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *JobStore) Update(ctx context.Context, job *jobDomain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return jobDomain.ErrJobNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *JobStore) ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobDomain.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := make([]*jobDomain.StepResult, 0, len(s.steps[jobID]))
	for _, step := range s.steps[jobID] {
		copied := step
		steps = append(steps, &copied)
	}
	return steps, nil
}

func (s *JobStore) SaveStep(ctx context.Context, step *jobDomain.StepResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := s.steps[step.JobID]
	for i := range steps {
		if steps[i].Step == step.Step {
			steps[i] = *step
			return nil
		}
	}
	s.steps[step.JobID] = append(steps, *step)
	return nil
}

// Jobs returns a snapshot of every stored job.
func (s *JobStore) Jobs() []jobDomain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]jobDomain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// StepNames returns the recorded step names of a job in recording order.
func (s *JobStore) StepNames(jobID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.steps[jobID]))
	for _, step := range s.steps[jobID] {
		names = append(names, step.Step)
	}
	return names
}

// TxManager runs fn without a transaction, for use with the in-memory stores.
type TxManager struct{}

func (TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
