package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	jobUsecase "github.com/allisson/docrelay/internal/job/usecase"
	"github.com/allisson/docrelay/internal/upstream"
)

// DeliveryWorkflow holds the steps of a document.delivery job.
type DeliveryWorkflow struct {
	blobs     BlobStore
	registry  accountUsecase.Registry
	uploader  Uploader
	retention time.Duration
	logger    *slog.Logger
}

// NewDeliveryWorkflow creates the delivery workflow. The staged blob is kept for
// retention after a successful upload.
func NewDeliveryWorkflow(
	blobs BlobStore,
	registry accountUsecase.Registry,
	uploader Uploader,
	retention time.Duration,
	logger *slog.Logger,
) *DeliveryWorkflow {
	return &DeliveryWorkflow{
		blobs:     blobs,
		registry:  registry,
		uploader:  uploader,
		retention: retention,
		logger:    logger,
	}
}

// Steps returns the workflow in execution order.
func (w *DeliveryWorkflow) Steps() []jobUsecase.Step {
	return []jobUsecase.Step{
		{Name: documentDomain.StepRetrieveInfo, Run: w.retrieveInfo},
		{Name: documentDomain.StepAuthenticate, Run: w.authenticate},
		{Name: documentDomain.StepUpload, Run: w.upload},
		{Name: documentDomain.StepSleep, Sleep: w.retention},
		{Name: documentDomain.StepCleanup, Run: w.cleanup, ContinueOnError: true},
	}
}

func (w *DeliveryWorkflow) retrieveInfo(ctx context.Context, exec *jobUsecase.Execution) (any, error) {
	var params documentDomain.DeliveryParams
	if err := exec.Params(&params); err != nil {
		return nil, err
	}

	object, err := w.blobs.Get(ctx, params.DocumentID)
	if err != nil {
		if errors.Is(err, documentDomain.ErrBlobNotFound) {
			return nil, jobDomain.Permanent(err)
		}
		return nil, err
	}

	uploadedAt := object.ModTime.UTC()
	if raw, ok := object.Metadata[documentDomain.MetaUploadedAt]; ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			uploadedAt = parsed.UTC()
		}
	}

	return documentDomain.BlobInfo{
		Size:        object.Size,
		ContentType: object.ContentType,
		UploadedAt:  uploadedAt,
	}, nil
}

// authenticate proves the account can obtain a token before the body is read.
// The token itself is not recorded; upload asks the token manager again.
func (w *DeliveryWorkflow) authenticate(ctx context.Context, exec *jobUsecase.Execution) (any, error) {
	var params documentDomain.DeliveryParams
	if err := exec.Params(&params); err != nil {
		return nil, err
	}

	if _, err := w.accessToken(ctx, params.AccountID); err != nil {
		return nil, err
	}
	return map[string]bool{"authenticated": true}, nil
}

func (w *DeliveryWorkflow) upload(ctx context.Context, exec *jobUsecase.Execution) (any, error) {
	var params documentDomain.DeliveryParams
	if err := exec.Params(&params); err != nil {
		return nil, err
	}
	var info documentDomain.BlobInfo
	if err := exec.Result(documentDomain.StepRetrieveInfo, &info); err != nil {
		return nil, err
	}

	token, err := w.accessToken(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}
	syncHost, err := w.registry.Get(params.AccountID).SyncHost(ctx)
	if err != nil {
		return nil, err
	}

	body, err := w.blobs.Open(ctx, params.DocumentID)
	if err != nil {
		if errors.Is(err, documentDomain.ErrBlobNotFound) {
			return nil, jobDomain.Permanent(err)
		}
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	contentType := info.ContentType
	if contentType == "" {
		contentType = documentDomain.DefaultContentType
	}

	result, err := w.uploader.UploadDocument(ctx, syncHost, token, upstream.Document{
		Name:           params.DocumentName,
		ContentType:    contentType,
		Body:           body,
		IdempotencyKey: params.DocumentID,
	})
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			return nil, jobDomain.Permanent(&documentDomain.UpstreamAPIError{
				StatusCode: statusErr.StatusCode,
				Body:       statusErr.Body,
			})
		}
		return nil, err
	}

	w.logger.Info("document delivered",
		slog.String("document_id", params.DocumentID),
		slog.String("account_id", params.AccountID),
		slog.String("upstream_id", result.DocID),
	)

	return documentDomain.UploadRecord{
		StatusCode:  result.StatusCode,
		UpstreamID:  result.DocID,
		Destination: syncHost,
	}, nil
}

func (w *DeliveryWorkflow) cleanup(ctx context.Context, exec *jobUsecase.Execution) (any, error) {
	var params documentDomain.DeliveryParams
	if err := exec.Params(&params); err != nil {
		return nil, err
	}

	if err := w.blobs.Delete(ctx, params.DocumentID); err != nil {
		if errors.Is(err, documentDomain.ErrBlobNotFound) {
			return map[string]bool{"deleted": false}, nil
		}
		return nil, fmt.Errorf("%w: %v", documentDomain.ErrDeleteFailure, err)
	}
	return map[string]bool{"deleted": true}, nil
}

func (w *DeliveryWorkflow) accessToken(ctx context.Context, accountID string) (string, error) {
	token, ok, err := w.registry.Get(accountID).AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", documentDomain.ErrNoAccessToken
	}
	return token, nil
}
