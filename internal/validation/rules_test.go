package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/docrelay/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("linkCode: cannot be blank"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "linkCode: cannot be blank")
}

func TestRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      validation.Rule
		value     string
		shouldErr bool
	}{
		{"email valid", Email, "reader@example.com", false},
		{"email invalid", Email, "reader@", true},
		{"email with display name", Email, "Reader <reader@example.com>", true},
		{"link code valid", LinkCode, "abcd1234", false},
		{"link code too short", LinkCode, "abc", true},
		{"link code symbols", LinkCode, "abcd-1234", true},
		{"account id valid", AccountID, uuid.NewString(), false},
		{"account id invalid", AccountID, "not-a-uuid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, tt.rule)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
