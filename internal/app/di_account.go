package app

import (
	"context"
	"fmt"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountHTTP "github.com/allisson/docrelay/internal/account/http"
	accountRepository "github.com/allisson/docrelay/internal/account/repository"
	accountService "github.com/allisson/docrelay/internal/account/service"
	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	"github.com/allisson/docrelay/internal/database"
	"github.com/allisson/docrelay/internal/upstream"
)

// UpstreamClient returns the client for the document-sync API.
func (c *Container) UpstreamClient() (*upstream.Client, error) {
	var err error
	c.upstreamClientInit.Do(func() {
		c.upstreamClient, err = c.initUpstreamClient()
		if err != nil {
			c.initErrors["upstreamClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["upstreamClient"]; exists {
		return nil, storedErr
	}
	return c.upstreamClient, nil
}

// CredentialKeeper returns the keeper sealing tokens at rest, or nil when
// CREDENTIAL_KEEPER_URL is empty.
func (c *Container) CredentialKeeper() (accountDomain.CredentialKeeper, error) {
	var err error
	c.credentialKeeperInit.Do(func() {
		c.credentialKeeper, err = c.initCredentialKeeper()
		if err != nil {
			c.initErrors["credentialKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialKeeper"]; exists {
		return nil, storedErr
	}
	return c.credentialKeeper, nil
}

// CredentialRepository returns the credential repository for the configured driver.
func (c *Container) CredentialRepository() (accountUsecase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// Registry returns the per-account token manager registry.
func (c *Container) Registry() (accountUsecase.Registry, error) {
	var err error
	c.registryInit.Do(func() {
		c.registry, err = c.initRegistry()
		if err != nil {
			c.initErrors["registry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["registry"]; exists {
		return nil, storedErr
	}
	return c.registry, nil
}

// AccountUseCase returns the account use case.
func (c *Container) AccountUseCase() (accountUsecase.AccountUseCase, error) {
	var err error
	c.accountUseCaseInit.Do(func() {
		c.accountUseCase, err = c.initAccountUseCase()
		if err != nil {
			c.initErrors["accountUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountUseCase"]; exists {
		return nil, storedErr
	}
	return c.accountUseCase, nil
}

// AccountHandler returns the HTTP handler for registration and account status.
func (c *Container) AccountHandler() (*accountHTTP.AccountHandler, error) {
	var err error
	c.accountHandlerInit.Do(func() {
		c.accountHandler, err = c.initAccountHandler()
		if err != nil {
			c.initErrors["accountHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountHandler"]; exists {
		return nil, storedErr
	}
	return c.accountHandler, nil
}

func (c *Container) initUpstreamClient() (*upstream.Client, error) {
	if c.config.UpstreamDiscoveryURL == "" {
		return nil, fmt.Errorf("upstream discovery url is required")
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for upstream client: %w", err)
	}

	return upstream.NewClient(
		c.config.UpstreamDiscoveryURL,
		c.config.UpstreamDeviceDesc,
		c.config.UpstreamTimeout,
		businessMetrics,
	), nil
}

func (c *Container) initCredentialKeeper() (accountDomain.CredentialKeeper, error) {
	if c.config.CredentialKeeperURL == "" {
		return nil, nil
	}

	keeper, err := accountService.NewKeeperService().OpenKeeper(context.Background(), c.config.CredentialKeeperURL)
	if err != nil {
		return nil, err
	}

	c.Logger().Info("credential encryption enabled")
	return keeper, nil
}

func (c *Container) initCredentialRepository() (accountUsecase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	var repo accountUsecase.CredentialRepository
	switch c.config.DBDriver {
	case database.DriverPostgres:
		repo = accountRepository.NewPostgreSQLCredentialRepository(db)
	case database.DriverMySQL:
		repo = accountRepository.NewMySQLCredentialRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	keeper, err := c.CredentialKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential keeper: %w", err)
	}
	if keeper != nil {
		repo = accountRepository.NewEncryptedCredentialRepository(repo, keeper)
	}

	return repo, nil
}

func (c *Container) initRegistry() (accountUsecase.Registry, error) {
	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for registry: %w", err)
	}

	client, err := c.UpstreamClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get upstream client for registry: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for registry: %w", err)
	}

	return accountUsecase.NewRegistry(
		repo,
		client,
		businessMetrics,
		c.config.AccountIdleTimeout,
		c.Logger(),
	), nil
}

func (c *Container) initAccountUseCase() (accountUsecase.AccountUseCase, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry for account use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for account use case: %w", err)
	}

	return accountUsecase.NewAccountUseCaseWithMetrics(
		accountUsecase.NewAccountUseCase(registry),
		businessMetrics,
	), nil
}

func (c *Container) initAccountHandler() (*accountHTTP.AccountHandler, error) {
	useCase, err := c.AccountUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get account use case for account handler: %w", err)
	}

	return accountHTTP.NewAccountHandler(useCase, c.config.SignupEnabled, c.Logger()), nil
}
