package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// AccessToken returns a signed token whose exp claim is exp.
func AccessToken(t testing.TB, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}).SignedString([]byte("upstream-test-key"))
	require.NoError(t, err)
	return token
}
