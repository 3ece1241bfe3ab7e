// Package http provides HTTP handlers for document uploads and inbound email.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	"github.com/allisson/docrelay/internal/document/http/dto"
	documentUseCase "github.com/allisson/docrelay/internal/document/usecase"
	"github.com/allisson/docrelay/internal/httputil"
	"github.com/allisson/docrelay/internal/inbound"
	customValidation "github.com/allisson/docrelay/internal/validation"
)

var errFileRequired = errors.New("file is required")

// DocumentHandler accepts documents for delivery.
type DocumentHandler struct {
	documentUseCase documentUseCase.DocumentUseCase
	maxUploadBytes  int64
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler. Request bodies larger than
// maxUploadBytes are refused with 413.
func NewDocumentHandler(
	documentUseCase documentUseCase.DocumentUseCase,
	maxUploadBytes int64,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentUseCase: documentUseCase,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// UploadHandler stages a multipart upload and schedules its delivery.
// POST /upload - Returns 202 Accepted with the document and job ids.
func (h *DocumentHandler) UploadHandler(c *gin.Context) {
	h.limitBody(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			h.payloadTooLarge(c, err)
			return
		}
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(errFileRequired), h.logger)
		return
	}

	req := dto.UploadRequest{
		AccountID: c.PostForm("authId"),
		Email:     c.PostForm("email"),
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	output, err := h.documentUseCase.Upload(c.Request.Context(), &documentDomain.UploadInput{
		AccountID:      req.AccountID,
		Name:           fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Body:           file,
		RequesterEmail: req.Email,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapUploadOutputToResponse(output))
}

// InboundEmailHandler accepts a raw RFC 5322 message relayed by a mail gateway.
// POST /inbound/email - Returns 202 Accepted, or 422 with the rejection reason.
func (h *DocumentHandler) InboundEmailHandler(c *gin.Context) {
	h.limitBody(c)

	output, err := h.documentUseCase.IngestEmail(c.Request.Context(), c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			h.payloadTooLarge(c, err)
			return
		}

		var rejection *inbound.RejectionError
		switch {
		case errors.As(err, &rejection):
			h.reject(c, rejection.Reason)
		case errors.Is(err, accountDomain.ErrNotRegistered):
			h.reject(c, accountDomain.ErrNotRegistered.Error())
		default:
			httputil.HandleErrorGin(c, err, h.logger)
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.MapIngestOutputToResponse(output))
}

func (h *DocumentHandler) limitBody(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
}

func (h *DocumentHandler) reject(c *gin.Context, reason string) {
	h.logger.Warn("inbound email rejected", slog.String("reason", reason))
	c.JSON(http.StatusUnprocessableEntity, httputil.ErrorResponse{
		Error:   "rejected",
		Message: reason,
	})
}

func (h *DocumentHandler) payloadTooLarge(c *gin.Context, err error) {
	h.logger.Warn("request body too large", slog.Any("error", err))
	c.JSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
		Error:   "payload_too_large",
		Message: "The request body exceeds the upload limit",
	})
}

func tooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
