// Package errors holds the sentinels every domain error wraps. Handlers only ever
// test against these, so a new domain error picks up its HTTP status by wrapping one.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: no such credential, job or blob.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the write collides with an existing record.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput: request or CLI input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized: the upstream refused the link code or refresh token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: the account is not in a state that allows the call.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable: a dependency needed to serve the call cannot be used.
	ErrUnavailable = errors.New("unavailable")

	// ErrBadGateway: the upstream document API answered with a failure.
	ErrBadGateway = errors.New("bad gateway")
)

// Wrap adds message in front of err and keeps err in the chain. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
