package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

func TestMapJobToResponse(t *testing.T) {
	now := time.Now().UTC()
	lastErr := "no valid access token"
	job := &jobDomain.Job{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        "document.delivery",
		Status:      jobDomain.StatusFailed,
		Attempts:    3,
		LastError:   &lastErr,
		WakeAt:      now,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}

	response := MapJobToResponse(job, []*jobDomain.StepResult{{Step: "retrieve_info"}})

	assert.Equal(t, job.ID.String(), response.ID)
	assert.Equal(t, "failed", response.Status)
	assert.Equal(t, 3, response.Attempts)
	assert.Equal(t, &lastErr, response.LastError)
	assert.Equal(t, []string{"retrieve_info"}, response.Steps)
}

func TestMapJobToResponse_NoSteps(t *testing.T) {
	response := MapJobToResponse(&jobDomain.Job{ID: uuid.Must(uuid.NewV7())}, nil)

	assert.NotNil(t, response.Steps)
	assert.Empty(t, response.Steps)
}
