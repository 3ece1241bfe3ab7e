package domain

import (
	"errors"
	"fmt"

	apperrors "github.com/allisson/docrelay/internal/errors"
)

// Document errors.
var (
	// ErrUpstreamAPI indicates the document API rejected an upload.
	ErrUpstreamAPI = apperrors.Wrap(apperrors.ErrBadGateway, "upstream document API error")

	// ErrBlobNotFound indicates the staged document is missing from the blob store.
	ErrBlobNotFound = apperrors.Wrap(apperrors.ErrNotFound, "staged document not found")

	// ErrDeleteFailure indicates the staged document could not be deleted after delivery.
	ErrDeleteFailure = errors.New("failed to delete staged document")

	// ErrNoAccessToken indicates the account has no usable access token.
	ErrNoAccessToken = errors.New("no valid access token")

	// ErrEmptyDocument indicates an upload without content.
	ErrEmptyDocument = apperrors.Wrap(apperrors.ErrInvalidInput, "document is empty")
)

// UpstreamAPIError carries the status and body of a rejected upload.
type UpstreamAPIError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamAPIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrUpstreamAPI.Error(), e.StatusCode, e.Body)
}

func (e *UpstreamAPIError) Unwrap() error {
	return ErrUpstreamAPI
}
