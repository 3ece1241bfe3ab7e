// Package mocks provides testify mocks for the document use case interfaces.
package mocks

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	documentUsecase "github.com/allisson/docrelay/internal/document/usecase"
)

// MockDocumentUseCase is a mock implementation of DocumentUseCase.
type MockDocumentUseCase struct {
	mock.Mock
}

// NewMockDocumentUseCase creates a MockDocumentUseCase whose expectations are asserted on cleanup.
func NewMockDocumentUseCase(t *testing.T) *MockDocumentUseCase {
	m := &MockDocumentUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDocumentUseCase) Upload(
	ctx context.Context,
	input *documentDomain.UploadInput,
) (*documentDomain.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentDomain.UploadOutput), args.Error(1)
}

func (m *MockDocumentUseCase) IngestEmail(
	ctx context.Context,
	raw io.Reader,
) (*documentDomain.IngestOutput, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentDomain.IngestOutput), args.Error(1)
}

var _ documentUsecase.DocumentUseCase = (*MockDocumentUseCase)(nil)
