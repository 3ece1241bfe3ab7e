package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	customValidation "github.com/allisson/docrelay/internal/validation"
)

// RunAccountStatus prints whether an account has a registered device and whether
// a valid access token can currently be obtained for it.
func RunAccountStatus(
	ctx context.Context,
	accountUseCase accountUsecase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if err := validation.Validate(accountID, validation.Required, customValidation.AccountID); err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	status, err := accountUseCase.Status(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account status: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"account_id": accountID,
			"registered": status.Registered,
		}
		if status.DeviceID != nil {
			result["device_id"] = *status.DeviceID
		}
		if status.AccessTokenValid != nil {
			result["access_token_valid"] = *status.AccessTokenValid
		}
		if err := outputJSON(result, writer); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Account ID: %s\n", accountID)
		_, _ = fmt.Fprintf(writer, "Registered: %t\n", status.Registered)
		if status.DeviceID != nil {
			_, _ = fmt.Fprintf(writer, "Device ID: %s\n", *status.DeviceID)
		}
		if status.AccessTokenValid != nil {
			_, _ = fmt.Fprintf(writer, "Access token valid: %t\n", *status.AccessTokenValid)
		}
	}

	logger.Debug("account status reported",
		slog.String("account_id", accountID),
		slog.Bool("registered", status.Registered),
	)

	return nil
}
