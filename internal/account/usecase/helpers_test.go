package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/docrelay/internal/testutil"
	"github.com/allisson/docrelay/internal/upstream"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(now time.Time) *clock {
	return &clock{now: now}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type relayFixture struct {
	upstream *testutil.FakeUpstream
	store    *testutil.CredentialStore
	clock    *clock
	registry *registry
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	fake := testutil.NewFakeUpstream(t)
	store := testutil.NewCredentialStore()
	c := newClock(time.Now())
	client := newFakeClient(fake)

	return &relayFixture{
		upstream: fake,
		store:    store,
		clock:    c,
		registry: newRegistry(store, client, nil, 0, discardLogger(), c.Now),
	}
}

// mockUpstreamClient is a mock implementation of UpstreamClient for testing.
type mockUpstreamClient struct {
	mock.Mock
}

func (m *mockUpstreamClient) Discover(ctx context.Context) (*upstream.Hosts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Hosts), args.Error(1)
}

func (m *mockUpstreamClient) RegisterDevice(
	ctx context.Context,
	authHost, linkCode, deviceID string,
) (string, error) {
	args := m.Called(ctx, authHost, linkCode, deviceID)
	return args.String(0), args.Error(1)
}

func (m *mockUpstreamClient) RefreshToken(ctx context.Context, authHost, refreshToken string) (string, error) {
	args := m.Called(ctx, authHost, refreshToken)
	return args.String(0), args.Error(1)
}

var _ UpstreamClient = (*mockUpstreamClient)(nil)

func newFakeClient(fake *testutil.FakeUpstream) *upstream.Client {
	return upstream.NewClient(fake.DiscoveryURL(), "browser-chrome", 5*time.Second, nil)
}
