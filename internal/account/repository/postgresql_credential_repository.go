// Package repository persists account credential records.
//
// PostgreSQL and MySQL implementations have transaction support via database.GetTx().
// EncryptedCredentialRepository wraps either one and seals the tokens with a
// gocloud.dev secrets keeper before they reach the database.
package repository

import (
	"context"
	"database/sql"
	"errors"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	"github.com/allisson/docrelay/internal/database"
	apperrors "github.com/allisson/docrelay/internal/errors"
)

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Get retrieves the credential record of an account.
func (p *PostgreSQLCredentialRepository) Get(
	ctx context.Context,
	accountID string,
) (*accountDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT account_id, device_id, refresh_token, access_token, created_at, updated_at
			  FROM account_credentials WHERE account_id = $1`

	var credential accountDomain.Credential
	var accessToken sql.NullString

	err := querier.QueryRowContext(ctx, query, accountID).Scan(
		&credential.AccountID,
		&credential.DeviceID,
		&credential.RefreshToken,
		&accessToken,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	credential.AccessToken = accessToken.String

	return &credential, nil
}

// Save inserts or replaces the credential record of an account.
func (p *PostgreSQLCredentialRepository) Save(ctx context.Context, credential *accountDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO account_credentials
			  (account_id, device_id, refresh_token, access_token, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (account_id) DO UPDATE SET
			  	device_id = EXCLUDED.device_id,
			  	refresh_token = EXCLUDED.refresh_token,
			  	access_token = EXCLUDED.access_token,
			  	updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.AccountID,
		credential.DeviceID,
		credential.RefreshToken,
		nullString(credential.AccessToken),
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to save credential")
	}
	return nil
}

// Delete removes the credential record of an account. Deleting a missing record is not an error.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, accountID string) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM account_credentials WHERE account_id = $1`, accountID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
