package dto

import (
	accountDomain "github.com/allisson/docrelay/internal/account/domain"
)

// SignupEnabledResponse reports whether new devices may be registered.
type SignupEnabledResponse struct {
	SignupEnabled bool `json:"signupEnabled"`
}

// RegisterResponse is returned after a device was registered.
type RegisterResponse struct {
	Success  bool   `json:"success"`
	AuthID   string `json:"authId"`
	DeviceID string `json:"deviceId"`
}

// StatusResponse describes the registration state of an account.
type StatusResponse struct {
	Registered       bool    `json:"registered"`
	DeviceID         *string `json:"deviceId,omitempty"`
	AccessTokenValid *bool   `json:"accessTokenValid,omitempty"`
}

// DestroyResponse confirms the credential record was removed.
type DestroyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MapRegisterResultToResponse converts a registration result to its response.
func MapRegisterResultToResponse(result *accountDomain.RegisterResult) RegisterResponse {
	return RegisterResponse{
		Success:  true,
		AuthID:   result.AccountID,
		DeviceID: result.DeviceID,
	}
}

// MapStatusToResponse converts a domain status to its response.
func MapStatusToResponse(status *accountDomain.Status) StatusResponse {
	return StatusResponse{
		Registered:       status.Registered,
		DeviceID:         status.DeviceID,
		AccessTokenValid: status.AccessTokenValid,
	}
}
