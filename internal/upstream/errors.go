package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDiscovery indicates the discovery document is unreadable or incomplete.
	ErrMalformedDiscovery = errors.New("malformed discovery response")

	// ErrEmptyBody indicates a token endpoint answered 2xx without a token.
	ErrEmptyBody = errors.New("empty response body")
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}
