package app

import (
	"fmt"

	"github.com/allisson/docrelay/internal/database"
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
	jobHTTP "github.com/allisson/docrelay/internal/job/http"
	jobRepository "github.com/allisson/docrelay/internal/job/repository"
	jobUsecase "github.com/allisson/docrelay/internal/job/usecase"
)

// JobRepository returns the job repository for the configured driver.
func (c *Container) JobRepository() (jobUsecase.JobRepository, error) {
	var err error
	c.jobRepositoryInit.Do(func() {
		c.jobRepository, err = c.initJobRepository()
		if err != nil {
			c.initErrors["jobRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobRepository"]; exists {
		return nil, storedErr
	}
	return c.jobRepository, nil
}

// JobRunner returns the job runner with every workflow registered.
func (c *Container) JobRunner() (*jobUsecase.Runner, error) {
	var err error
	c.jobRunnerInit.Do(func() {
		c.jobRunner, err = c.initJobRunner()
		if err != nil {
			c.initErrors["jobRunner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobRunner"]; exists {
		return nil, storedErr
	}
	return c.jobRunner, nil
}

// JobHandler returns the HTTP handler exposing job progress.
func (c *Container) JobHandler() (*jobHTTP.JobHandler, error) {
	var err error
	c.jobHandlerInit.Do(func() {
		c.jobHandler, err = c.initJobHandler()
		if err != nil {
			c.initErrors["jobHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobHandler"]; exists {
		return nil, storedErr
	}
	return c.jobHandler, nil
}

func (c *Container) initJobRepository() (jobUsecase.JobRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for job repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return jobRepository.NewPostgreSQLJobRepository(db), nil
	case database.DriverMySQL:
		return jobRepository.NewMySQLJobRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initJobRunner() (*jobUsecase.Runner, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for job runner: %w", err)
	}

	repo, err := c.JobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job repository for job runner: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for job runner: %w", err)
	}

	runner := jobUsecase.NewRunner(
		jobUsecase.Config{
			Interval:      c.config.WorkerInterval,
			BatchSize:     c.config.WorkerBatchSize,
			MaxRetries:    c.config.WorkerMaxRetries,
			RetryInterval: c.config.WorkerRetryInterval,
			Lease:         c.config.WorkerLease,
		},
		txManager,
		repo,
		businessMetrics,
		c.Logger(),
	)

	workflow, err := c.DeliveryWorkflow()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery workflow for job runner: %w", err)
	}
	runner.Register(documentDomain.JobKind, workflow.Steps())

	return runner, nil
}

func (c *Container) initJobHandler() (*jobHTTP.JobHandler, error) {
	runner, err := c.JobRunner()
	if err != nil {
		return nil, fmt.Errorf("failed to get job runner for job handler: %w", err)
	}

	return jobHTTP.NewJobHandler(runner, c.Logger()), nil
}
