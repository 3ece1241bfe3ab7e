package app

import (
	"context"
	"fmt"

	documentHTTP "github.com/allisson/docrelay/internal/document/http"
	"github.com/allisson/docrelay/internal/document/storage"
	documentUsecase "github.com/allisson/docrelay/internal/document/usecase"
)

// BlobBucket returns the bucket staging document bodies.
func (c *Container) BlobBucket() (*storage.Bucket, error) {
	var err error
	c.blobBucketInit.Do(func() {
		c.blobBucket, err = c.initBlobBucket()
		if err != nil {
			c.initErrors["blobBucket"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blobBucket"]; exists {
		return nil, storedErr
	}
	return c.blobBucket, nil
}

// DeliveryWorkflow returns the workflow that delivers staged documents upstream.
func (c *Container) DeliveryWorkflow() (*documentUsecase.DeliveryWorkflow, error) {
	var err error
	c.deliveryWorkflowInit.Do(func() {
		c.deliveryWorkflow, err = c.initDeliveryWorkflow()
		if err != nil {
			c.initErrors["deliveryWorkflow"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deliveryWorkflow"]; exists {
		return nil, storedErr
	}
	return c.deliveryWorkflow, nil
}

// DocumentUseCase returns the document use case.
func (c *Container) DocumentUseCase() (documentUsecase.DocumentUseCase, error) {
	var err error
	c.documentUseCaseInit.Do(func() {
		c.documentUseCase, err = c.initDocumentUseCase()
		if err != nil {
			c.initErrors["documentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentUseCase"]; exists {
		return nil, storedErr
	}
	return c.documentUseCase, nil
}

// DocumentHandler returns the HTTP handler for uploads and inbound email.
func (c *Container) DocumentHandler() (*documentHTTP.DocumentHandler, error) {
	var err error
	c.documentHandlerInit.Do(func() {
		c.documentHandler, err = c.initDocumentHandler()
		if err != nil {
			c.initErrors["documentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentHandler"]; exists {
		return nil, storedErr
	}
	return c.documentHandler, nil
}

func (c *Container) initBlobBucket() (*storage.Bucket, error) {
	if c.config.BlobBucketURL == "" {
		return nil, fmt.Errorf("blob bucket url is required")
	}
	return storage.OpenBucket(context.Background(), c.config.BlobBucketURL)
}

func (c *Container) initDeliveryWorkflow() (*documentUsecase.DeliveryWorkflow, error) {
	bucket, err := c.BlobBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob bucket for delivery workflow: %w", err)
	}

	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry for delivery workflow: %w", err)
	}

	client, err := c.UpstreamClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get upstream client for delivery workflow: %w", err)
	}

	return documentUsecase.NewDeliveryWorkflow(
		bucket,
		registry,
		client,
		c.config.RetentionPeriod,
		c.Logger(),
	), nil
}

func (c *Container) initDocumentUseCase() (documentUsecase.DocumentUseCase, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry for document use case: %w", err)
	}

	bucket, err := c.BlobBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob bucket for document use case: %w", err)
	}

	runner, err := c.JobRunner()
	if err != nil {
		return nil, fmt.Errorf("failed to get job runner for document use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for document use case: %w", err)
	}

	return documentUsecase.NewDocumentUseCaseWithMetrics(
		documentUsecase.NewDocumentUseCase(registry, bucket, runner, c.Logger()),
		businessMetrics,
	), nil
}

func (c *Container) initDocumentHandler() (*documentHTTP.DocumentHandler, error) {
	useCase, err := c.DocumentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get document use case for document handler: %w", err)
	}

	return documentHTTP.NewDocumentHandler(useCase, c.config.MaxUploadBytes, c.Logger()), nil
}
