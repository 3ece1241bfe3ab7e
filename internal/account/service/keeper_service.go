// Package service provides infrastructure services for the account module.
package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"

	// Register keeper drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperService opens the keeper used to encrypt credentials at rest.
type KeeperService interface {
	// OpenKeeper opens a keeper from a gocloud.dev URL such as base64key://,
	// awskms://, gcpkms://, azurekeyvault:// or hashivault://.
	OpenKeeper(ctx context.Context, keeperURL string) (accountDomain.CredentialKeeper, error)
}

type keeperService struct{}

// NewKeeperService creates a new KeeperService.
func NewKeeperService() KeeperService {
	return &keeperService{}
}

func (k *keeperService) OpenKeeper(ctx context.Context, keeperURL string) (accountDomain.CredentialKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential keeper: %w", err)
	}
	return keeper, nil
}
