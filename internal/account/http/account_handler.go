// Package http provides HTTP handlers for device registration and account status.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/docrelay/internal/account/http/dto"
	accountUseCase "github.com/allisson/docrelay/internal/account/usecase"
	"github.com/allisson/docrelay/internal/httputil"
	customValidation "github.com/allisson/docrelay/internal/validation"
)

var errSignupDisabled = errors.New("signup is disabled")

// AccountHandler handles device registration, status and removal.
type AccountHandler struct {
	accountUseCase accountUseCase.AccountUseCase
	signupEnabled  bool
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(
	accountUseCase accountUseCase.AccountUseCase,
	signupEnabled bool,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountUseCase: accountUseCase,
		signupEnabled:  signupEnabled,
		logger:         logger,
	}
}

// SignupEnabledHandler reports whether POST /register accepts new devices.
// GET /signup-enabled
func (h *AccountHandler) SignupEnabledHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SignupEnabledResponse{SignupEnabled: h.signupEnabled})
}

// RegisterHandler registers a device with a one-time link code.
// POST /register - Returns 201 Created with the new account and device ids.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	if !h.signupEnabled {
		httputil.HandleBadRequestGin(c, errSignupDisabled, h.logger)
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.accountUseCase.Register(c.Request.Context(), req.LinkCode)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRegisterResultToResponse(result))
}

// StatusHandler reports the registration state of an account.
// GET /auth/:authId/status
func (h *AccountHandler) StatusHandler(c *gin.Context) {
	accountID := c.Param("authId")
	if err := dto.ValidateAccountID(accountID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := h.accountUseCase.Status(c.Request.Context(), accountID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}

// DestroyHandler removes the credential record of an account.
// DELETE /auth/:authId
func (h *AccountHandler) DestroyHandler(c *gin.Context) {
	accountID := c.Param("authId")
	if err := dto.ValidateAccountID(accountID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.accountUseCase.Destroy(c.Request.Context(), accountID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DestroyResponse{
		Success: true,
		Message: "Device credentials removed",
	})
}
