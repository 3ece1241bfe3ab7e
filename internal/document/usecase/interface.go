// Package usecase stages documents and delivers them upstream through the job runner.
package usecase

import (
	"context"
	"io"

	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	"github.com/allisson/docrelay/internal/upstream"
)

// BlobStore stages document bodies keyed by document id.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, opts documentDomain.PutOptions) (int64, error)
	// Get returns ErrBlobNotFound when key is absent.
	Get(ctx context.Context, key string) (*documentDomain.BlobObject, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// JobCreator schedules delivery jobs.
type JobCreator interface {
	Create(ctx context.Context, kind string, params any) (*jobDomain.Job, error)
}

// Uploader sends a document to the upstream sync host.
type Uploader interface {
	UploadDocument(
		ctx context.Context,
		syncHost, accessToken string,
		doc upstream.Document,
	) (*upstream.UploadResult, error)
}

// DocumentUseCase accepts documents for delivery.
type DocumentUseCase interface {
	// Upload stages the document and schedules its delivery. It fails with
	// ErrNotRegistered, storing nothing, when the account has no device.
	Upload(ctx context.Context, input *documentDomain.UploadInput) (*documentDomain.UploadOutput, error)

	// IngestEmail parses a raw RFC 5322 message and uploads each attachment on
	// behalf of the account named by the recipient's local part.
	IngestEmail(ctx context.Context, raw io.Reader) (*documentDomain.IngestOutput, error)
}
