package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/docrelay/internal/metrics"
	"github.com/allisson/docrelay/internal/testutil"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordJobStep(ctx context.Context, kind, step, outcome string) {
	m.Called(ctx, kind, step, outcome)
}

func (m *mockBusinessMetrics) RecordUpstreamRequest(
	ctx context.Context,
	endpoint string,
	statusCode int,
	duration time.Duration,
) {
	m.Called(ctx, endpoint, statusCode, duration)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestNewAccountUseCaseWithMetrics(t *testing.T) {
	f := newRelayFixture(t)

	decorator := NewAccountUseCaseWithMetrics(NewAccountUseCase(f.registry), &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*AccountUseCase)(nil), decorator)
}

func TestMetricsDecorator_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		f := newRelayFixture(t)
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", ctx, metrics.DomainAccount, "account_register", "success").Once()
		mockMetrics.On("RecordDuration", ctx, metrics.DomainAccount, "account_register",
			mock.AnythingOfType("time.Duration"), "success").Once()

		decorator := NewAccountUseCaseWithMetrics(NewAccountUseCase(f.registry), mockMetrics)
		_, err := decorator.RegisterWithID(ctx, "acct-1", "ABC123")

		require.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		f := newRelayFixture(t)
		f.upstream.Set(func(u *testutil.FakeUpstream) {
			u.OnRegister = func(string, string) (int, string) { return http.StatusBadRequest, "" }
		})
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", ctx, metrics.DomainAccount, "account_register", "error").Once()
		mockMetrics.On("RecordDuration", ctx, metrics.DomainAccount, "account_register",
			mock.AnythingOfType("time.Duration"), "error").Once()

		decorator := NewAccountUseCaseWithMetrics(NewAccountUseCase(f.registry), mockMetrics)
		_, err := decorator.Register(ctx, "WRONG1")

		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_StatusAndDestroy(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)
	mockMetrics := &mockBusinessMetrics{}
	mockMetrics.On("RecordOperation", ctx, metrics.DomainAccount, "account_status", "success").Once()
	mockMetrics.On("RecordDuration", ctx, metrics.DomainAccount, "account_status",
		mock.AnythingOfType("time.Duration"), "success").Once()
	mockMetrics.On("RecordOperation", ctx, metrics.DomainAccount, "account_destroy", "success").Once()
	mockMetrics.On("RecordDuration", ctx, metrics.DomainAccount, "account_destroy",
		mock.AnythingOfType("time.Duration"), "success").Once()

	decorator := NewAccountUseCaseWithMetrics(NewAccountUseCase(f.registry), mockMetrics)

	_, err := decorator.Status(ctx, "acct-1")
	require.NoError(t, err)
	require.NoError(t, decorator.Destroy(ctx, "acct-1"))
	mockMetrics.AssertExpectations(t)
}

func TestTokenManager_RecordsAccountMetrics(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeUpstream(t)
	mockMetrics := &mockBusinessMetrics{}
	mockMetrics.On("RecordOperation", mock.Anything, metrics.DomainAccount, "refresh", "success").Once()
	mockMetrics.On("RecordOperation", mock.Anything, metrics.DomainAccount, "register", "success").Once()

	reg := newRegistry(testutil.NewCredentialStore(), newFakeClient(fake), mockMetrics, 0, discardLogger(), time.Now)
	_, err := reg.Get("acct-1").Register(ctx, "ABC123", "dev-1")

	require.NoError(t, err)
	mockMetrics.AssertExpectations(t)
}
