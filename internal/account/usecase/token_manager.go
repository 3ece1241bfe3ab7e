package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	apperrors "github.com/allisson/docrelay/internal/errors"
	"github.com/allisson/docrelay/internal/metrics"
	"github.com/allisson/docrelay/internal/upstream"
)

// tokenManager serializes every call with mu. Discovery runs under the same lock
// on the first call, so no caller ever sees an uninitialized instance.
type tokenManager struct {
	accountID string
	repo      CredentialRepository
	client    UpstreamClient
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	initialized bool
	initErr     error
	hosts       *upstream.Hosts
	cached      string
}

func newTokenManager(
	accountID string,
	repo CredentialRepository,
	client UpstreamClient,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
	now func() time.Time,
) *tokenManager {
	return &tokenManager{
		accountID: accountID,
		repo:      repo,
		client:    client,
		metrics:   businessMetrics,
		logger:    logger.With(slog.String("account_id", accountID)),
		now:       now,
	}
}

// init must be called with mu held.
func (m *tokenManager) init(ctx context.Context) error {
	if m.initialized {
		return m.initErr
	}

	hosts, err := m.client.Discover(ctx)
	if err != nil {
		// A cancelled caller says nothing about the upstream; let the next call retry.
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", accountDomain.ErrDiscovery, ctx.Err())
		}
		m.initialized = true
		m.initErr = fmt.Errorf("%w: %v", accountDomain.ErrDiscovery, err)
		m.logger.Error("upstream discovery failed", slog.Any("error", err))
		return m.initErr
	}

	m.initialized = true
	m.hosts = hosts
	return nil
}

func (m *tokenManager) Register(
	ctx context.Context,
	linkCode, deviceID string,
) (*accountDomain.RegisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return nil, err
	}

	credential, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	if credential == nil {
		credential = &accountDomain.Credential{AccountID: m.accountID, CreatedAt: now}
	}

	// The device id is kept even when registration fails so a retry can reuse it.
	credential.DeviceID = deviceID
	credential.UpdatedAt = now
	if err := m.repo.Save(ctx, credential); err != nil {
		return nil, err
	}

	refreshToken, err := m.client.RegisterDevice(ctx, m.hosts.AuthHost, linkCode, deviceID)
	if err != nil {
		m.metrics.RecordOperation(ctx, metrics.DomainAccount, "register", "error")
		return nil, accountDomain.NewAuthError("device registration rejected", err)
	}

	credential.RefreshToken = refreshToken
	credential.AccessToken = ""
	credential.UpdatedAt = m.now().UTC()
	if err := m.repo.Save(ctx, credential); err != nil {
		return nil, err
	}
	m.cached = ""

	if _, ok, err := m.refresh(ctx); err != nil {
		return nil, err
	} else if !ok {
		m.metrics.RecordOperation(ctx, metrics.DomainAccount, "register", "error")
		return nil, accountDomain.NewAuthError("initial token refresh failed", nil)
	}

	m.metrics.RecordOperation(ctx, metrics.DomainAccount, "register", "success")
	m.logger.Info("device registered", slog.String("device_id", deviceID))

	return &accountDomain.RegisterResult{AccountID: m.accountID, DeviceID: deviceID}, nil
}

func (m *tokenManager) AccessToken(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return "", false, err
	}
	return m.refresh(ctx)
}

func (m *tokenManager) IsRegistered(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return false, err
	}
	return m.isRegistered(ctx)
}

func (m *tokenManager) Status(ctx context.Context) (*accountDomain.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return nil, err
	}

	credential, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if !credential.IsRegistered() {
		return &accountDomain.Status{Registered: false}, nil
	}

	_, valid, err := m.refresh(ctx)
	if err != nil {
		return nil, err
	}

	deviceID := credential.DeviceID
	return &accountDomain.Status{
		Registered:       true,
		DeviceID:         &deviceID,
		AccessTokenValid: &valid,
	}, nil
}

func (m *tokenManager) Destroy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return err
	}

	if err := m.repo.Delete(ctx, m.accountID); err != nil {
		m.metrics.RecordOperation(ctx, metrics.DomainAccount, "destroy", "error")
		return err
	}
	m.cached = ""

	m.metrics.RecordOperation(ctx, metrics.DomainAccount, "destroy", "success")
	m.logger.Info("credential destroyed")
	return nil
}

func (m *tokenManager) SyncHost(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.init(ctx); err != nil {
		return "", err
	}
	return m.hosts.SyncHost, nil
}

// refresh returns a valid access token, calling the upstream only when neither
// the cache nor the persisted record holds one. Must be called with mu held.
func (m *tokenManager) refresh(ctx context.Context) (string, bool, error) {
	now := m.now()
	if m.cached != "" && accountDomain.AccessTokenValid(m.cached, now) {
		return m.cached, true, nil
	}

	credential, err := m.load(ctx)
	if err != nil {
		return "", false, err
	}
	if credential == nil || credential.RefreshToken == "" {
		m.cached = ""
		return "", false, nil
	}

	// A token persisted by an earlier process is still good after a restart.
	if credential.AccessToken != "" && accountDomain.AccessTokenValid(credential.AccessToken, now) {
		m.cached = credential.AccessToken
		return m.cached, true, nil
	}

	token, err := m.client.RefreshToken(ctx, m.hosts.AuthHost, credential.RefreshToken)
	if err != nil {
		m.metrics.RecordOperation(ctx, metrics.DomainAccount, "refresh", "error")
		m.logger.Warn("token refresh failed", slog.Any("error", err))
		return "", false, nil
	}
	if !accountDomain.AccessTokenValid(token, m.now()) {
		m.metrics.RecordOperation(ctx, metrics.DomainAccount, "refresh", "error")
		m.logger.Warn("upstream returned an expired or unreadable access token")
		return "", false, nil
	}

	credential.AccessToken = token
	credential.UpdatedAt = m.now().UTC()
	if err := m.repo.Save(ctx, credential); err != nil {
		return "", false, err
	}
	m.cached = token

	m.metrics.RecordOperation(ctx, metrics.DomainAccount, "refresh", "success")
	return token, true, nil
}

func (m *tokenManager) isRegistered(ctx context.Context) (bool, error) {
	credential, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	return credential.IsRegistered(), nil
}

// load returns nil without error when the account has no record.
func (m *tokenManager) load(ctx context.Context) (*accountDomain.Credential, error) {
	credential, err := m.repo.Get(ctx, m.accountID)
	if err != nil {
		if errors.Is(err, accountDomain.ErrCredentialNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to load credential")
	}
	return credential, nil
}
