package domain

import (
	"errors"

	apperrors "github.com/allisson/docrelay/internal/errors"
)

// Job errors.
var (
	// ErrJobNotFound indicates no job exists with the given id.
	ErrJobNotFound = apperrors.Wrap(apperrors.ErrNotFound, "job not found")

	// ErrUnknownKind indicates no workflow is registered for the job kind.
	ErrUnknownKind = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown job kind")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err as not worth retrying. The job fails as soon as a step returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
