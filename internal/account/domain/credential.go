// Package domain defines the device credential lifecycle of an account.
//
// An account owns at most one registered device. Registration yields a long-lived
// refresh token that is exchanged for short-lived access tokens on demand. An account
// is registered when both its device id and refresh token are persisted; a missing or
// expired access token never changes that.
package domain

import (
	"context"
	"time"
)

// Credential is the persisted device credential record of one account.
type Credential struct {
	AccountID    string
	DeviceID     string
	RefreshToken string //nolint:gosec // stored encrypted by the keeper decorator
	AccessToken  string //nolint:gosec // optional cached access token
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRegistered reports whether the record carries both a device id and a refresh token.
func (c *Credential) IsRegistered() bool {
	return c != nil && c.DeviceID != "" && c.RefreshToken != ""
}

// RegisterResult is returned by a successful device registration.
type RegisterResult struct {
	AccountID string
	DeviceID  string
}

// Status describes the registration state of an account. DeviceID and
// AccessTokenValid are only set when the account is registered.
type Status struct {
	Registered       bool
	DeviceID         *string
	AccessTokenValid *bool
}

// CredentialKeeper encrypts credential secrets at rest. *secrets.Keeper from
// gocloud.dev satisfies it.
type CredentialKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
