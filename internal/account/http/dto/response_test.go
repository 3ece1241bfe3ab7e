package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
)

func TestMapRegisterResultToResponse(t *testing.T) {
	response := MapRegisterResultToResponse(&accountDomain.RegisterResult{AccountID: "a", DeviceID: "d"})

	assert.Equal(t, RegisterResponse{Success: true, AuthID: "a", DeviceID: "d"}, response)
}

func TestMapStatusToResponse(t *testing.T) {
	t.Run("UnregisteredOmitsOptionalFields", func(t *testing.T) {
		body, err := json.Marshal(MapStatusToResponse(&accountDomain.Status{Registered: false}))

		require.NoError(t, err)
		assert.JSONEq(t, `{"registered":false}`, string(body))
	})

	t.Run("RegisteredIncludesDeviceAndToken", func(t *testing.T) {
		deviceID := "dev-1"
		valid := false
		body, err := json.Marshal(MapStatusToResponse(&accountDomain.Status{
			Registered:       true,
			DeviceID:         &deviceID,
			AccessTokenValid: &valid,
		}))

		require.NoError(t, err)
		assert.JSONEq(t, `{"registered":true,"deviceId":"dev-1","accessTokenValid":false}`, string(body))
	})
}
