package repository

import (
	"context"
	"encoding/base64"
	"strings"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	apperrors "github.com/allisson/docrelay/internal/errors"
)

// sealedPrefix marks a token column that holds keeper ciphertext. Rows written
// before a keeper was configured stay readable as plaintext.
const sealedPrefix = "sealed:"

type credentialStore interface {
	Get(ctx context.Context, accountID string) (*accountDomain.Credential, error)
	Save(ctx context.Context, credential *accountDomain.Credential) error
	Delete(ctx context.Context, accountID string) error
}

// EncryptedCredentialRepository seals refresh and access tokens with a keeper
// before delegating to the wrapped repository.
type EncryptedCredentialRepository struct {
	next   credentialStore
	keeper accountDomain.CredentialKeeper
}

// NewEncryptedCredentialRepository wraps next so that tokens are encrypted at rest.
func NewEncryptedCredentialRepository(
	next credentialStore,
	keeper accountDomain.CredentialKeeper,
) *EncryptedCredentialRepository {
	return &EncryptedCredentialRepository{next: next, keeper: keeper}
}

// Get loads and decrypts the credential record of an account.
func (e *EncryptedCredentialRepository) Get(
	ctx context.Context,
	accountID string,
) (*accountDomain.Credential, error) {
	credential, err := e.next.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if credential.RefreshToken, err = e.open(ctx, credential.RefreshToken); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt refresh token")
	}
	if credential.AccessToken, err = e.open(ctx, credential.AccessToken); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt access token")
	}
	return credential, nil
}

// Save encrypts the tokens and stores the record. The caller's value is left untouched.
func (e *EncryptedCredentialRepository) Save(ctx context.Context, credential *accountDomain.Credential) error {
	sealed := *credential

	var err error
	if sealed.RefreshToken, err = e.seal(ctx, credential.RefreshToken); err != nil {
		return apperrors.Wrap(err, "failed to encrypt refresh token")
	}
	if sealed.AccessToken, err = e.seal(ctx, credential.AccessToken); err != nil {
		return apperrors.Wrap(err, "failed to encrypt access token")
	}
	return e.next.Save(ctx, &sealed)
}

// Delete removes the credential record of an account.
func (e *EncryptedCredentialRepository) Delete(ctx context.Context, accountID string) error {
	return e.next.Delete(ctx, accountID)
}

func (e *EncryptedCredentialRepository) seal(ctx context.Context, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	ciphertext, err := e.keeper.Encrypt(ctx, []byte(value))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (e *EncryptedCredentialRepository) open(ctx context.Context, value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", err
	}
	plaintext, err := e.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
