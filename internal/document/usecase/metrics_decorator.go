package usecase

import (
	"context"
	"io"
	"time"

	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	"github.com/allisson/docrelay/internal/metrics"
)

// documentUseCaseWithMetrics decorates DocumentUseCase with metrics instrumentation.
type documentUseCaseWithMetrics struct {
	next    DocumentUseCase
	metrics metrics.BusinessMetrics
}

// NewDocumentUseCaseWithMetrics wraps a DocumentUseCase with metrics recording.
func NewDocumentUseCaseWithMetrics(useCase DocumentUseCase, m metrics.BusinessMetrics) DocumentUseCase {
	return &documentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *documentUseCaseWithMetrics) Upload(
	ctx context.Context,
	input *documentDomain.UploadInput,
) (*documentDomain.UploadOutput, error) {
	start := time.Now()
	output, err := d.next.Upload(ctx, input)
	d.record(ctx, "document_upload", start, err)
	return output, err
}

func (d *documentUseCaseWithMetrics) IngestEmail(
	ctx context.Context,
	raw io.Reader,
) (*documentDomain.IngestOutput, error) {
	start := time.Now()
	output, err := d.next.IngestEmail(ctx, raw)
	d.record(ctx, "document_ingest_email", start, err)
	return output, err
}

func (d *documentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.metrics.RecordOperation(ctx, metrics.DomainDocument, operation, status)
	d.metrics.RecordDuration(ctx, metrics.DomainDocument, operation, time.Since(start), status)
}
