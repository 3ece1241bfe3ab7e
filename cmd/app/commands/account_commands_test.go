package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountMocks "github.com/allisson/docrelay/internal/account/usecase/mocks"
)

const testAccountID = "01926f3a-7c1e-7b6a-9d2f-3e4a5b6c7d8e"

func TestRunRegisterDevice(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("new-account-text", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		mockUseCase.On("Register", ctx, "ABC123").
			Return(&accountDomain.RegisterResult{AccountID: testAccountID, DeviceID: "dev-1"}, nil)

		var out bytes.Buffer
		err := RunRegisterDevice(ctx, mockUseCase, logger, &out, " ABC123 ", "", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), testAccountID)
		assert.Contains(t, out.String(), "dev-1")
	})

	t.Run("existing-account-json", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		mockUseCase.On("RegisterWithID", ctx, testAccountID, "ABC123").
			Return(&accountDomain.RegisterResult{AccountID: testAccountID, DeviceID: "dev-2"}, nil)

		var out bytes.Buffer
		err := RunRegisterDevice(ctx, mockUseCase, logger, &out, "ABC123", testAccountID, "json")

		require.NoError(t, err)
		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, testAccountID, result["account_id"])
		assert.Equal(t, "dev-2", result["device_id"])
	})

	t.Run("invalid-link-code", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)

		err := RunRegisterDevice(ctx, mockUseCase, logger, &bytes.Buffer{}, "a b", "", "text")

		assert.ErrorContains(t, err, "invalid link code")
	})

	t.Run("invalid-account-id", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)

		err := RunRegisterDevice(ctx, mockUseCase, logger, &bytes.Buffer{}, "ABC123", "nope", "text")

		assert.ErrorContains(t, err, "invalid account id")
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)

		err := RunRegisterDevice(ctx, mockUseCase, logger, &bytes.Buffer{}, "ABC123", "", "yaml")

		assert.ErrorContains(t, err, "invalid format")
	})

	t.Run("rejected", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		authErr := accountDomain.NewAuthError("device registration rejected", errors.New("400"))
		mockUseCase.On("Register", ctx, "ABC123").Return(nil, authErr)

		err := RunRegisterDevice(ctx, mockUseCase, logger, &bytes.Buffer{}, "ABC123", "", "text")

		assert.ErrorIs(t, err, accountDomain.ErrAuth)
	})
}

func TestRunAccountStatus(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("registered-json", func(t *testing.T) {
		deviceID := "dev-1"
		valid := true
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		mockUseCase.On("Status", ctx, testAccountID).Return(&accountDomain.Status{
			Registered:       true,
			DeviceID:         &deviceID,
			AccessTokenValid: &valid,
		}, nil)

		var out bytes.Buffer
		err := RunAccountStatus(ctx, mockUseCase, logger, &out, testAccountID, "json")

		require.NoError(t, err)
		assert.JSONEq(t, `{
			"account_id": "`+testAccountID+`",
			"registered": true,
			"device_id": "dev-1",
			"access_token_valid": true
		}`, out.String())
	})

	t.Run("unregistered-text", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		mockUseCase.On("Status", ctx, testAccountID).Return(&accountDomain.Status{Registered: false}, nil)

		var out bytes.Buffer
		err := RunAccountStatus(ctx, mockUseCase, logger, &out, testAccountID, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Registered: false")
		assert.NotContains(t, out.String(), "Device ID")
	})

	t.Run("missing-account-id", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)

		err := RunAccountStatus(ctx, mockUseCase, logger, &bytes.Buffer{}, "", "text")

		assert.ErrorContains(t, err, "invalid account id")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := accountMocks.NewMockAccountUseCase(t)
		mockUseCase.On("Status", ctx, testAccountID).Return(nil, accountDomain.ErrDiscovery)

		err := RunAccountStatus(ctx, mockUseCase, logger, &bytes.Buffer{}, testAccountID, "text")

		assert.ErrorIs(t, err, accountDomain.ErrDiscovery)
	})
}
