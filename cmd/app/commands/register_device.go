package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/jellydator/validation"

	accountUsecase "github.com/allisson/docrelay/internal/account/usecase"
	customValidation "github.com/allisson/docrelay/internal/validation"
)

// RunRegisterDevice pairs a device with the upstream using a one-time link code.
// When accountID is empty a new account id is generated; otherwise the device is
// registered again for that account.
//
// Requirements: Database must be migrated and accessible.
func RunRegisterDevice(
	ctx context.Context,
	accountUseCase accountUsecase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	linkCode string,
	accountID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	linkCode = strings.TrimSpace(linkCode)
	if err := validation.Validate(linkCode, validation.Required, customValidation.LinkCode); err != nil {
		return fmt.Errorf("invalid link code: %w", err)
	}

	if accountID != "" {
		if err := validation.Validate(accountID, customValidation.AccountID); err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
	}

	logger.Info("registering device", slog.String("account_id", accountID))

	register := func() (string, string, error) {
		if accountID == "" {
			result, err := accountUseCase.Register(ctx, linkCode)
			if err != nil {
				return "", "", err
			}
			return result.AccountID, result.DeviceID, nil
		}
		result, err := accountUseCase.RegisterWithID(ctx, accountID, linkCode)
		if err != nil {
			return "", "", err
		}
		return result.AccountID, result.DeviceID, nil
	}

	registeredID, deviceID, err := register()
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	if format == "json" {
		if err := outputJSON(map[string]string{
			"account_id": registeredID,
			"device_id":  deviceID,
		}, writer); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(writer, "\nDevice registered successfully!")
		_, _ = fmt.Fprintf(writer, "Account ID: %s\n", registeredID)
		_, _ = fmt.Fprintf(writer, "Device ID: %s\n", deviceID)
	}

	logger.Info("device registered successfully",
		slog.String("account_id", registeredID),
		slog.String("device_id", deviceID),
	)

	return nil
}
