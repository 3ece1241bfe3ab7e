package repository

import (
	"context"
	"database/sql"
	"errors"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	"github.com/allisson/docrelay/internal/database"
	apperrors "github.com/allisson/docrelay/internal/errors"
)

// MySQLCredentialRepository implements Credential persistence for MySQL.
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Get retrieves the credential record of an account.
func (m *MySQLCredentialRepository) Get(
	ctx context.Context,
	accountID string,
) (*accountDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT account_id, device_id, refresh_token, access_token, created_at, updated_at
			  FROM account_credentials WHERE account_id = ?`

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
func (m *MySQLCredentialRepository) Save(ctx context.Context, credential *accountDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO account_credentials
			  (account_id, device_id, refresh_token, access_token, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  	device_id = VALUES(device_id),
			  	refresh_token = VALUES(refresh_token),
			  	access_token = VALUES(access_token),
			  	updated_at = VALUES(updated_at)`

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

// Delete removes the credential record of an account.
func (m *MySQLCredentialRepository) Delete(ctx context.Context, accountID string) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM account_credentials WHERE account_id = ?`, accountID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return nil
}

// NewMySQLCredentialRepository creates a new MySQL Credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
