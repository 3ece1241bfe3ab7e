package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	documentUsecase "github.com/allisson/docrelay/internal/document/usecase"
)

// RunIngestEmail feeds a raw RFC 5322 message through the inbound email pipeline,
// the same way POST /inbound/email does. Useful for mail servers that pipe
// messages to a command.
func RunIngestEmail(
	ctx context.Context,
	documentUseCase documentUsecase.DocumentUseCase,
	logger *slog.Logger,
	io IOTuple,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	output, err := documentUseCase.IngestEmail(ctx, io.Reader)
	if err != nil {
		return fmt.Errorf("failed to ingest email: %w", err)
	}

	if format == "json" {
		accepted := make([]map[string]string, 0, len(output.Accepted))
		for _, doc := range output.Accepted {
			accepted = append(accepted, map[string]string{
				"name":        doc.Name,
				"document_id": doc.DocumentID,
				"job_id":      doc.JobID,
			})
		}
		if err := outputJSON(map[string]any{
			"account_id": output.AccountID,
			"accepted":   accepted,
		}, io.Writer); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Accepted %d document(s) for account %s\n", len(output.Accepted), output.AccountID)
		for _, doc := range output.Accepted {
			_, _ = fmt.Fprintf(io.Writer, "  %s  document=%s job=%s\n", doc.Name, doc.DocumentID, doc.JobID)
		}
	}

	logger.Info("email ingested",
		slog.String("account_id", output.AccountID),
		slog.Int("accepted", len(output.Accepted)),
	)

	return nil
}

// OpenInput returns stdin for "-" and the named file otherwise.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message: %w", err)
	}
	return f, nil
}
