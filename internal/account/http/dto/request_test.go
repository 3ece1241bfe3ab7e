package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validate(t *testing.T) {
	t.Run("Success_ValidCode", func(t *testing.T) {
		req := RegisterRequest{LinkCode: "ABC123"}

		assert.NoError(t, req.Validate())
	})

	t.Run("Success_TrimmedByNormalize", func(t *testing.T) {
		req := RegisterRequest{LinkCode: "  abcdefgh\n"}
		req.Normalize()

		assert.Equal(t, "abcdefgh", req.LinkCode)
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_Missing", func(t *testing.T) {
		req := RegisterRequest{}

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "linkCode")
	})

	t.Run("Error_InvalidCharacters", func(t *testing.T) {
		req := RegisterRequest{LinkCode: "abc-123"}

		assert.Error(t, req.Validate())
	})
}

func TestValidateAccountID(t *testing.T) {
	assert.NoError(t, ValidateAccountID(uuid.Must(uuid.NewV7()).String()))
	assert.Error(t, ValidateAccountID(""))
	assert.Error(t, ValidateAccountID("not-a-uuid"))
}
