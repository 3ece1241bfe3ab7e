package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/docrelay/internal/app"
	"github.com/allisson/docrelay/internal/config"
)

// RunWorker runs the job runner alone, for deployments that keep delivery out of
// the API process. Blocks until SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker", slog.String("version", version))

	defer closeContainer(container, logger)

	runner, err := container.JobRunner()
	if err != nil {
		return fmt.Errorf("failed to initialize job runner: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("job runner error: %w", err)
	}

	logger.Info("worker stopped")
	return nil
}
