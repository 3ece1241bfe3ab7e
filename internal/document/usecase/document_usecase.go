package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	"github.com/allisson/docrelay/internal/inbound"
)

type documentUseCase struct {
	registry accountUsecase.Registry
	blobs    BlobStore
	jobs     JobCreator
	logger   *slog.Logger
	now      func() time.Time
}

// NewDocumentUseCase creates a DocumentUseCase that stages bodies in blobs and
// schedules their delivery through jobs.
func NewDocumentUseCase(
	registry accountUsecase.Registry,
	blobs BlobStore,
	jobs JobCreator,
	logger *slog.Logger,
) DocumentUseCase {
	return &documentUseCase{
		registry: registry,
		blobs:    blobs,
		jobs:     jobs,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *documentUseCase) Upload(
	ctx context.Context,
	input *documentDomain.UploadInput,
) (*documentDomain.UploadOutput, error) {
	registered, err := d.registry.Get(input.AccountID).IsRegistered(ctx)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, accountDomain.ErrNotRegistered
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = documentDomain.DefaultName
	}
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = documentDomain.DefaultContentType
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	documentID := id.String()

	metadata := map[string]string{
		documentDomain.MetaOriginalName: name,
		documentDomain.MetaUploadedAt:   d.now().UTC().Format(time.RFC3339),
		documentDomain.MetaAccountID:    input.AccountID,
	}
	if input.RequesterEmail != "" {
		metadata[documentDomain.MetaRequester] = input.RequesterEmail
	}

	size, err := d.blobs.Put(ctx, documentID, input.Body, documentDomain.PutOptions{
		ContentType:        contentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": name}),
		Metadata:           metadata,
	})
	if err != nil {
		return nil, err
	}
	if size == 0 {
		d.discard(ctx, documentID)
		return nil, documentDomain.ErrEmptyDocument
	}

	job, err := d.jobs.Create(ctx, documentDomain.JobKind, documentDomain.DeliveryParams{
		AccountID:      input.AccountID,
		DocumentID:     documentID,
		DocumentName:   name,
		RequesterEmail: input.RequesterEmail,
	})
	if err != nil {
		d.discard(ctx, documentID)
		return nil, fmt.Errorf("failed to schedule delivery: %w", err)
	}

	d.logger.Info("document staged",
		slog.String("document_id", documentID),
		slog.String("job_id", job.ID.String()),
		slog.String("account_id", input.AccountID),
		slog.Int64("size", size),
	)

	return &documentDomain.UploadOutput{DocumentID: documentID, JobID: job.ID.String()}, nil
}

func (d *documentUseCase) IngestEmail(ctx context.Context, raw io.Reader) (*documentDomain.IngestOutput, error) {
	msg, err := inbound.Parse(raw)
	if err != nil {
		return nil, err
	}

	output := &documentDomain.IngestOutput{
		AccountID: msg.AccountID,
		Accepted:  make([]documentDomain.AcceptedDocument, 0, len(msg.Attachments)),
	}

	// Attachments are independent. Once one is queued the message is answered as
	// accepted, so a gateway retrying on error never queues the others twice.
	var firstErr error
	for _, attachment := range msg.Attachments {
		result, err := d.Upload(ctx, &documentDomain.UploadInput{
			AccountID:      msg.AccountID,
			Name:           attachment.FileName,
			ContentType:    attachment.ContentType,
			Body:           bytes.NewReader(attachment.Content),
			RequesterEmail: msg.From,
		})
		if err != nil {
			if errors.Is(err, documentDomain.ErrEmptyDocument) {
				d.logger.Warn("skipping empty attachment", slog.String("name", attachment.FileName))
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			d.logger.Error("failed to stage attachment",
				slog.String("account_id", msg.AccountID),
				slog.String("name", attachment.FileName),
				slog.Any("error", err),
			)
			output.Failed = append(output.Failed, documentDomain.FailedDocument{
				Name:   attachment.FileName,
				Reason: documentDomain.ReasonStagingFailed,
			})
			continue
		}

		output.Accepted = append(output.Accepted, documentDomain.AcceptedDocument{
			Name:       attachment.FileName,
			DocumentID: result.DocumentID,
			JobID:      result.JobID,
		})
	}

	if len(output.Accepted) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, &inbound.RejectionError{Reason: inbound.ReasonNoAttachments}
	}
	return output, nil
}

// discard removes a blob that will never be delivered.
func (d *documentUseCase) discard(ctx context.Context, documentID string) {
	if err := d.blobs.Delete(ctx, documentID); err != nil && !errors.Is(err, documentDomain.ErrBlobNotFound) {
		d.logger.Error("failed to discard staged document",
			slog.String("document_id", documentID),
			slog.Any("error", err),
		)
	}
}
