package testutil

import (
	"context"
	"sync"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
)

// CredentialStore is an in-memory credential repository.
type CredentialStore struct {
	mu    sync.Mutex
	rows  map[string]accountDomain.Credential
	saves int

	// Err, when set, is returned by every call.
	Err error
}

// NewCredentialStore creates an empty CredentialStore.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{rows: make(map[string]accountDomain.Credential)}
}

func (s *CredentialStore) Get(ctx context.Context, accountID string) (*accountDomain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	row, ok := s.rows[accountID]
	if !ok {
		return nil, accountDomain.ErrCredentialNotFound
	}
	return &row, nil
}

func (s *CredentialStore) Save(ctx context.Context, credential *accountDomain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.rows[credential.AccountID] = *credential
	s.saves++
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.rows, accountID)
	return nil
}

// Peek returns a copy of the stored row without going through the repository contract.
func (s *CredentialStore) Peek(accountID string) (accountDomain.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[accountID]
	return row, ok
}

// Put stores a row directly.
func (s *CredentialStore) Put(credential accountDomain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[credential.AccountID] = credential
}
