// Package dto provides data transfer objects for the document HTTP endpoints.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/docrelay/internal/validation"
)

// UploadRequest holds the form fields sent with a multipart upload.
type UploadRequest struct {
	AccountID string `form:"authId"`
	Email     string `form:"email"`
}

// Normalize trims whitespace and lowercases the requester email.
func (r *UploadRequest) Normalize() {
	r.AccountID = strings.TrimSpace(r.AccountID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks if the upload request is valid.
func (r *UploadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AccountID,
			validation.Required,
			customValidation.AccountID,
		),
		validation.Field(&r.Email,
			customValidation.Email,
		),
	)
}
