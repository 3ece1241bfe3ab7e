// Package validation holds the jellydator/validation rules shared by the HTTP DTOs
// and the CLI commands.
package validation

import (
	"regexp"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/docrelay/internal/errors"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	linkCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9]{6,16}$`)
)

// WrapValidationError turns a rule failure into ErrInvalidInput, keeping the
// field messages in the text.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email accepts a plain addr-spec; display names are rejected.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// LinkCode validates the one-time code a user copies from the upstream pairing page.
var LinkCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return linkCodeRegex.MatchString(s)
	},
	validation.NewError("validation_link_code", "must be 6 to 16 letters or digits"),
)

// AccountID validates that a string is a UUID account identifier.
var AccountID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_account_id", "must be a valid account id"),
)
