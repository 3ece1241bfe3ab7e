// Package domain defines durable, step-based background jobs.
//
// A job is an instance of a workflow registered under a kind. Its steps run in
// order and each completed step is recorded, so a job resumed by another worker
// or after a restart skips the steps it already finished. Sleep steps park the
// job until a wake time instead of holding a goroutine.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusSleeping Status = "sleeping"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// IsTerminal reports whether the job will never run again.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Job is a persisted workflow instance.
type Job struct {
	ID          uuid.UUID
	Kind        string
	Params      json.RawMessage
	Status      Status
	Attempts    int
	LastError   *string
	WakeAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// StepResult is the recorded output of a completed step.
type StepResult struct {
	JobID       uuid.UUID
	Step        string
	Result      json.RawMessage
	CompletedAt time.Time
}

// SleepRecord is the result stored for a sleep step on first arrival.
type SleepRecord struct {
	Until time.Time `json:"until"`
}
