package usecase

import (
	"context"
	"time"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	"github.com/allisson/docrelay/internal/metrics"
)

// accountUseCaseWithMetrics decorates AccountUseCase with metrics instrumentation.
type accountUseCaseWithMetrics struct {
	next    AccountUseCase
	metrics metrics.BusinessMetrics
}

// NewAccountUseCaseWithMetrics wraps an AccountUseCase with metrics recording.
func NewAccountUseCaseWithMetrics(useCase AccountUseCase, m metrics.BusinessMetrics) AccountUseCase {
	return &accountUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *accountUseCaseWithMetrics) Register(
	ctx context.Context,
	linkCode string,
) (*accountDomain.RegisterResult, error) {
	start := time.Now()
	result, err := a.next.Register(ctx, linkCode)
	a.record(ctx, "account_register", start, err)
	return result, err
}

func (a *accountUseCaseWithMetrics) RegisterWithID(
	ctx context.Context,
	accountID, linkCode string,
) (*accountDomain.RegisterResult, error) {
	start := time.Now()
	result, err := a.next.RegisterWithID(ctx, accountID, linkCode)
	a.record(ctx, "account_register", start, err)
	return result, err
}

func (a *accountUseCaseWithMetrics) Status(ctx context.Context, accountID string) (*accountDomain.Status, error) {
	start := time.Now()
	status, err := a.next.Status(ctx, accountID)
	a.record(ctx, "account_status", start, err)
	return status, err
}

func (a *accountUseCaseWithMetrics) Destroy(ctx context.Context, accountID string) error {
	start := time.Now()
	err := a.next.Destroy(ctx, accountID)
	a.record(ctx, "account_destroy", start, err)
	return err
}

func (a *accountUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, metrics.DomainAccount, operation, status)
	a.metrics.RecordDuration(ctx, metrics.DomainAccount, operation, time.Since(start), status)
}
