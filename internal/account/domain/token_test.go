package domain

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestParseAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("Success_SignedToken", func(t *testing.T) {
		got, ok := ParseAccessTokenExpiry(signedToken(t, jwt.MapClaims{"exp": exp.Unix()}))

		assert.True(t, ok)
		assert.True(t, exp.Equal(got))
	})

	t.Run("Success_PaddedStandardBase64Payload", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"exp":` + jsonInt(exp.Unix()) + `,"sub":"a"}`))
		got, ok := ParseAccessTokenExpiry("eyJhbGciOiJub25lIn0." + payload + ".sig")

		assert.True(t, ok)
		assert.True(t, exp.Equal(got))
	})

	t.Run("Success_UnknownAlgorithm", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"custom"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + jsonInt(exp.Unix()) + `}`))
		got, ok := ParseAccessTokenExpiry(header + "." + payload + ".sig")

		assert.True(t, ok)
		assert.True(t, exp.Equal(got))
	})

	tests := []struct {
		name  string
		token string
	}{
		{"Empty", ""},
		{"SingleSegment", "abc"},
		{"NotBase64", "a.!!!.c"},
		{"NotJSON", "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c"},
		{"MissingExp", "a." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`)) + ".c"},
		{"StringExp", "a." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":"soon"}`)) + ".c"},
	}
	for _, tt := range tests {
		t.Run("Invalid_"+tt.name, func(t *testing.T) {
			_, ok := ParseAccessTokenExpiry(tt.token)
			assert.False(t, ok)
		})
	}
}

func TestAccessTokenValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("FutureExpiry", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Second).Unix()})
		assert.True(t, AccessTokenValid(token, now))
	})

	t.Run("ExpiryEqualToNowIsExpired", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": now.Unix()})
		assert.False(t, AccessTokenValid(token, now))
	})

	t.Run("PastExpiry", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
		assert.False(t, AccessTokenValid(token, now))
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.False(t, AccessTokenValid("garbage", now))
	})
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
