package domain

import (
	"github.com/allisson/docrelay/internal/errors"
)

// Account errors.
var (
	// ErrCredentialNotFound indicates no credential record exists for the account.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrDiscovery indicates the upstream hosts could not be resolved. It is sticky
	// for the lifetime of the account's token manager.
	ErrDiscovery = errors.Wrap(errors.ErrUnavailable, "upstream discovery failed")

	// ErrAuth indicates registration or the follow-up refresh was rejected.
	ErrAuth = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrNotRegistered indicates the account has no registered device.
	ErrNotRegistered = errors.Wrap(errors.ErrForbidden, "account is not registered")
)

// AuthError carries the reason a registration failed.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return ErrAuth.Error() + ": " + e.Reason + ": " + e.Err.Error()
	}
	return ErrAuth.Error() + ": " + e.Reason
}

// Unwrap exposes both ErrAuth and the underlying cause.
func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuth}
	}
	return []error{ErrAuth, e.Err}
}

// NewAuthError builds an AuthError for reason, optionally wrapping err.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}
