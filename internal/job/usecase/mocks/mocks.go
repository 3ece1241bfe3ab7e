// Package mocks provides testify mocks for the job use case interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	jobUsecase "github.com/allisson/docrelay/internal/job/usecase"
)

// MockUseCase is a mock implementation of UseCase.
type MockUseCase struct {
	mock.Mock
}

// NewMockUseCase creates a MockUseCase whose expectations are asserted on cleanup.
func NewMockUseCase(t *testing.T) *MockUseCase {
	m := &MockUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUseCase) Create(ctx context.Context, kind string, params any) (*jobDomain.Job, error) {
	args := m.Called(ctx, kind, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobDomain.Job), args.Error(1)
}

func (m *MockUseCase) Get(ctx context.Context, id uuid.UUID) (*jobDomain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobDomain.Job), args.Error(1)
}

func (m *MockUseCase) Steps(ctx context.Context, id uuid.UUID) ([]*jobDomain.StepResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*jobDomain.StepResult), args.Error(1)
}

func (m *MockUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUseCase) ProcessDue(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ jobUsecase.UseCase = (*MockUseCase)(nil)
