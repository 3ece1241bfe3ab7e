// Package dto provides data transfer objects for the job HTTP endpoints.
package dto

import (
	"time"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

// JobResponse is the public status document of a job.
type JobResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   *string    `json:"lastError,omitempty"`
	WakeAt      time.Time  `json:"wakeAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Steps       []string   `json:"steps"`
}

// MapJobToResponse converts a job and its recorded steps to a response.
func MapJobToResponse(job *jobDomain.Job, steps []*jobDomain.StepResult) JobResponse {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.Step)
	}

	return JobResponse{
		ID:          job.ID.String(),
		Kind:        job.Kind,
		Status:      string(job.Status),
		Attempts:    job.Attempts,
		LastError:   job.LastError,
		WakeAt:      job.WakeAt,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		CompletedAt: job.CompletedAt,
		Steps:       names,
	}
}
