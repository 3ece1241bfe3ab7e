// Package dto provides data transfer objects for the account HTTP endpoints.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/docrelay/internal/validation"
)

// RegisterRequest carries the one-time link code shown by the upstream pairing page.
type RegisterRequest struct {
	LinkCode string `json:"linkCode"`
}

// Normalize trims surrounding whitespace from the link code.
func (r *RegisterRequest) Normalize() {
	r.LinkCode = strings.TrimSpace(r.LinkCode)
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LinkCode,
			validation.Required,
			customValidation.LinkCode,
		),
	)
}

// ValidateAccountID checks an account id taken from the URL.
func ValidateAccountID(accountID string) error {
	return validation.Validate(accountID, validation.Required, customValidation.AccountID)
}
