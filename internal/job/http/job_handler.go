// Package http provides the HTTP handler for job status lookups.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/docrelay/internal/httputil"
	"github.com/allisson/docrelay/internal/job/http/dto"
	jobUseCase "github.com/allisson/docrelay/internal/job/usecase"
)

// JobHandler serves job status documents.
type JobHandler struct {
	jobUseCase jobUseCase.UseCase
	logger     *slog.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobUseCase jobUseCase.UseCase, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobUseCase: jobUseCase,
		logger:     logger,
	}
}

// GetHandler returns the status of a job.
// GET /jobs/:id
func (h *JobHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid job id: %w", err), h.logger)
		return
	}

	job, err := h.jobUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	steps, err := h.jobUseCase.Steps(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapJobToResponse(job, steps))
}
