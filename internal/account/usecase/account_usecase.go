package usecase

import (
	"context"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
)

type accountUseCase struct {
	registry Registry
}

// NewAccountUseCase creates an AccountUseCase on top of registry.
func NewAccountUseCase(registry Registry) AccountUseCase {
	return &accountUseCase{registry: registry}
}

// Register uses a UUIDv7 account id and a random UUIDv4 device id.
func (a *accountUseCase) Register(
	ctx context.Context,
	linkCode string,
) (*accountDomain.RegisterResult, error) {
	accountID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return a.RegisterWithID(ctx, accountID.String(), linkCode)
}

func (a *accountUseCase) RegisterWithID(
	ctx context.Context,
	accountID, linkCode string,
) (*accountDomain.RegisterResult, error) {
	return a.registry.Get(accountID).Register(ctx, linkCode, uuid.NewString())
}

func (a *accountUseCase) Status(ctx context.Context, accountID string) (*accountDomain.Status, error) {
	return a.registry.Get(accountID).Status(ctx)
}

func (a *accountUseCase) Destroy(ctx context.Context, accountID string) error {
	return a.registry.Get(accountID).Destroy(ctx)
}
