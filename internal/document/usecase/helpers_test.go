package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	"github.com/allisson/docrelay/internal/document/storage"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	jobUsecase "github.com/allisson/docrelay/internal/job/usecase"
	"github.com/allisson/docrelay/internal/testutil"
	"github.com/allisson/docrelay/internal/upstream"
)

const retention = 24 * time.Hour

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// relayFixture wires the upload use case and the delivery workflow over the real
// runner, in-memory stores, memblob and a fake upstream.
type relayFixture struct {
	upstream    *testutil.FakeUpstream
	credentials *testutil.CredentialStore
	jobs        *testutil.JobStore
	bucket      *storage.Bucket
	clock       *clock
	runner      *jobUsecase.Runner
	useCase     *documentUseCase
}

func newRelayFixture(t *testing.T, config jobUsecase.Config) *relayFixture {
	t.Helper()
	return newRelayFixtureWithBlobs(t, config, nil)
}

// newRelayFixtureWithBlobs lets wrap replace the blob store seen by the workflow.
func newRelayFixtureWithBlobs(
	t *testing.T,
	config jobUsecase.Config,
	wrap func(BlobStore) BlobStore,
) *relayFixture {
	t.Helper()

	fake := testutil.NewFakeUpstream(t)
	credentials := testutil.NewCredentialStore()
	jobs := testutil.NewJobStore()
	c := &clock{now: time.Now().UTC()}

	bucket := storage.NewBucket(memblob.OpenBucket(nil))
	t.Cleanup(func() { _ = bucket.Close() })

	client := upstream.NewClient(fake.DiscoveryURL(), "browser-chrome", 5*time.Second, nil)
	registry := accountUsecase.NewRegistry(credentials, client, nil, 0, discardLogger())

	var blobs BlobStore = bucket
	if wrap != nil {
		blobs = wrap(bucket)
	}

	runner := jobUsecase.NewRunner(config, testutil.TxManager{}, jobs, nil, discardLogger()).WithClock(c.Now)
	workflow := NewDeliveryWorkflow(blobs, registry, client, retention, discardLogger())
	runner.Register(documentDomain.JobKind, workflow.Steps())

	useCase := NewDocumentUseCase(registry, bucket, runner, discardLogger()).(*documentUseCase)
	useCase.now = c.Now

	return &relayFixture{
		upstream:    fake,
		credentials: credentials,
		jobs:        jobs,
		bucket:      bucket,
		clock:       c,
		runner:      runner,
		useCase:     useCase,
	}
}

// register stores a credential with a refresh token and no access token.
func (f *relayFixture) register(accountID string) {
	now := time.Now().UTC()
	f.credentials.Put(accountDomain.Credential{
		AccountID:    accountID,
		DeviceID:     "dev-1",
		RefreshToken: "RT1",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (f *relayFixture) upload(t *testing.T, accountID, name, body string) *documentDomain.UploadOutput {
	t.Helper()
	output, err := f.useCase.Upload(context.Background(), &documentDomain.UploadInput{
		AccountID:   accountID,
		Name:        name,
		ContentType: "text/plain",
		Body:        strings.NewReader(body),
	})
	require.NoError(t, err)
	return output
}

func (f *relayFixture) process(t *testing.T) {
	t.Helper()
	require.NoError(t, f.runner.ProcessDue(context.Background()))
}

func (f *relayFixture) job(t *testing.T, id string) *jobDomain.Job {
	t.Helper()
	job, err := f.runner.Get(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	return job
}

func (f *relayFixture) exists(t *testing.T, key string) bool {
	t.Helper()
	_, err := f.bucket.Get(context.Background(), key)
	if errors.Is(err, documentDomain.ErrBlobNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}
