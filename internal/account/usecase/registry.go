package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/docrelay/internal/metrics"
)

type registryEntry struct {
	manager  *tokenManager
	lastUsed time.Time
}

// registry evicts managers idle for idleTimeout. A sweep runs from Get at most
// once per idleTimeout, and skips any manager whose lock is held. An evicted
// account is rebuilt on its next reference, discovery included, and reloads
// its credential from the repository.
type registry struct {
	repo        CredentialRepository
	client      UpstreamClient
	metrics     metrics.BusinessMetrics
	logger      *slog.Logger
	now         func() time.Time
	idleTimeout time.Duration

	mu        sync.Mutex
	entries   map[string]*registryEntry
	lastSweep time.Time
}

// NewRegistry creates a Registry whose token managers share repo and client.
// A zero idleTimeout disables eviction.
func NewRegistry(
	repo CredentialRepository,
	client UpstreamClient,
	businessMetrics metrics.BusinessMetrics,
	idleTimeout time.Duration,
	logger *slog.Logger,
) Registry {
	return newRegistry(repo, client, businessMetrics, idleTimeout, logger, time.Now)
}

func newRegistry(
	repo CredentialRepository,
	client UpstreamClient,
	businessMetrics metrics.BusinessMetrics,
	idleTimeout time.Duration,
	logger *slog.Logger,
	now func() time.Time,
) *registry {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &registry{
		repo:        repo,
		client:      client,
		metrics:     businessMetrics,
		logger:      logger,
		now:         now,
		idleTimeout: idleTimeout,
		entries:     make(map[string]*registryEntry),
		lastSweep:   now(),
	}
}

// Get returns the TokenManager of accountID, creating it on first reference.
func (r *registry) Get(accountID string) TokenManager {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.idleTimeout > 0 && now.Sub(r.lastSweep) >= r.idleTimeout {
		r.evictIdle(now)
		r.lastSweep = now
	}

	entry, ok := r.entries[accountID]
	if !ok {
		entry = &registryEntry{
			manager: newTokenManager(accountID, r.repo, r.client, r.metrics, r.logger, r.now),
		}
		r.entries[accountID] = entry
	}
	entry.lastUsed = now
	return entry.manager
}

// evictIdle must be called with mu held.
func (r *registry) evictIdle(now time.Time) {
	evicted := 0
	for accountID, entry := range r.entries {
		if now.Sub(entry.lastUsed) < r.idleTimeout {
			continue
		}
		// A held lock means a call is in flight; try again on the next sweep.
		if !entry.manager.mu.TryLock() {
			continue
		}
		delete(r.entries, accountID)
		entry.manager.mu.Unlock()
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle token managers",
			slog.Int("evicted", evicted),
			slog.Int("resident", len(r.entries)),
		)
	}
}
