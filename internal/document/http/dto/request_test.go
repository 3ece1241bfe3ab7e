package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUploadRequest_Validate(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7()).String()

	t.Run("Success_WithoutEmail", func(t *testing.T) {
		req := UploadRequest{AccountID: accountID}

		assert.NoError(t, req.Validate())
	})

	t.Run("Success_NormalizedEmail", func(t *testing.T) {
		req := UploadRequest{AccountID: " " + accountID + " ", Email: " Alice@Example.COM "}
		req.Normalize()

		assert.Equal(t, accountID, req.AccountID)
		assert.Equal(t, "alice@example.com", req.Email)
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_MissingAccount", func(t *testing.T) {
		req := UploadRequest{}

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AccountID")
	})

	t.Run("Error_InvalidEmail", func(t *testing.T) {
		req := UploadRequest{AccountID: accountID, Email: "not-an-email"}

		assert.Error(t, req.Validate())
	})
}
