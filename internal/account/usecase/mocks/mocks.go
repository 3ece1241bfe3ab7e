// Package mocks provides testify mocks for the account use case interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
)

// MockTokenManager is a mock implementation of TokenManager.
type MockTokenManager struct {
	mock.Mock
}

// NewMockTokenManager creates a MockTokenManager whose expectations are asserted on cleanup.
func NewMockTokenManager(t *testing.T) *MockTokenManager {
	m := &MockTokenManager{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenManager) Register(
	ctx context.Context,
	linkCode, deviceID string,
) (*accountDomain.RegisterResult, error) {
	args := m.Called(ctx, linkCode, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.RegisterResult), args.Error(1)
}

func (m *MockTokenManager) AccessToken(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTokenManager) IsRegistered(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenManager) Status(ctx context.Context) (*accountDomain.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.Status), args.Error(1)
}

func (m *MockTokenManager) Destroy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTokenManager) SyncHost(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockRegistry is a mock implementation of Registry.
type MockRegistry struct {
	mock.Mock
}

// NewMockRegistry creates a MockRegistry whose expectations are asserted on cleanup.
func NewMockRegistry(t *testing.T) *MockRegistry {
	m := &MockRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRegistry) Get(accountID string) accountUsecase.TokenManager {
	args := m.Called(accountID)
	return args.Get(0).(accountUsecase.TokenManager)
}

// MockAccountUseCase is a mock implementation of AccountUseCase.
type MockAccountUseCase struct {
	mock.Mock
}

// NewMockAccountUseCase creates a MockAccountUseCase whose expectations are asserted on cleanup.
func NewMockAccountUseCase(t *testing.T) *MockAccountUseCase {
	m := &MockAccountUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountUseCase) Register(ctx context.Context, linkCode string) (*accountDomain.RegisterResult, error) {
	args := m.Called(ctx, linkCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.RegisterResult), args.Error(1)
}

func (m *MockAccountUseCase) RegisterWithID(
	ctx context.Context,
	accountID, linkCode string,
) (*accountDomain.RegisterResult, error) {
	args := m.Called(ctx, accountID, linkCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.RegisterResult), args.Error(1)
}

func (m *MockAccountUseCase) Status(ctx context.Context, accountID string) (*accountDomain.Status, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.Status), args.Error(1)
}

func (m *MockAccountUseCase) Destroy(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

var (
	_ accountUsecase.TokenManager   = (*MockTokenManager)(nil)
	_ accountUsecase.Registry       = (*MockRegistry)(nil)
	_ accountUsecase.AccountUseCase = (*MockAccountUseCase)(nil)
)
