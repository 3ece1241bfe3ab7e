// Package usecase implements the device credential lifecycle of an account.
//
// Every account id maps to one TokenManager that owns the account's cached access
// token and persisted credential record. All calls on one TokenManager are
// serialized; different accounts run concurrently.
package usecase

import (
	"context"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	"github.com/allisson/docrelay/internal/upstream"
)

// CredentialRepository persists one credential record per account.
type CredentialRepository interface {
	// Get returns ErrCredentialNotFound when the account has no record.
	Get(ctx context.Context, accountID string) (*accountDomain.Credential, error)

	// Save inserts or replaces the record.
	Save(ctx context.Context, credential *accountDomain.Credential) error

	// Delete removes the record. Deleting a missing record succeeds.
	Delete(ctx context.Context, accountID string) error
}

// UpstreamClient is the subset of the upstream API used for authentication.
type UpstreamClient interface {
	Discover(ctx context.Context) (*upstream.Hosts, error)
	RegisterDevice(ctx context.Context, authHost, linkCode, deviceID string) (string, error)
	RefreshToken(ctx context.Context, authHost, refreshToken string) (string, error)
}

// TokenManager manages the credential lifecycle of a single account.
//
// The first call of any method resolves the upstream hosts. A failed resolution
// is sticky: every later call returns an error wrapping ErrDiscovery.
type TokenManager interface {
	// Register persists deviceID, exchanges linkCode for a refresh token and
	// performs an initial refresh. It succeeds only when that refresh yields an
	// access token; otherwise it returns an *AuthError.
	Register(ctx context.Context, linkCode, deviceID string) (*accountDomain.RegisterResult, error)

	// AccessToken returns an unexpired access token, refreshing it when needed.
	// ok is false when the account is not registered or the refresh failed.
	// err is only set when discovery failed or the credential store is unusable.
	AccessToken(ctx context.Context) (token string, ok bool, err error)

	// IsRegistered reports whether both a device id and a refresh token are persisted.
	IsRegistered(ctx context.Context) (bool, error)

	// Status composes IsRegistered and AccessToken.
	Status(ctx context.Context) (*accountDomain.Status, error)

	// Destroy erases the persisted record and the cached token.
	Destroy(ctx context.Context) error

	// SyncHost returns the resolved document sync host.
	SyncHost(ctx context.Context) (string, error)
}

// Registry hands out the TokenManager of an account, creating it on first reference.
type Registry interface {
	Get(accountID string) TokenManager
}

// AccountUseCase is the entry point used by the HTTP handlers and the CLI.
type AccountUseCase interface {
	// Register creates a new account id and device id and registers the device
	// with the one-time link code.
	Register(ctx context.Context, linkCode string) (*accountDomain.RegisterResult, error)

	// RegisterWithID registers a device for an existing account id.
	RegisterWithID(ctx context.Context, accountID, linkCode string) (*accountDomain.RegisterResult, error)

	// Status reports the registration state of an account.
	Status(ctx context.Context, accountID string) (*accountDomain.Status, error)

	// Destroy removes the credential record of an account.
	Destroy(ctx context.Context, accountID string) error
}
