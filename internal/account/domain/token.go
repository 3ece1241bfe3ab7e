package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseAccessTokenExpiry reads the exp claim embedded in a dot-delimited access
// token. The signature is not verified; the relay only needs to know when the
// upstream will stop accepting the token.
func ParseAccessTokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		exp, err := claims.GetExpirationTime()
		if err == nil && exp != nil {
			return exp.Time, true
		}
		return time.Time{}, false
	}

	// Some issuers pad the payload or use the standard alphabet, which the
	// strict jwt decoder rejects.
	return parseLenientExpiry(token)
}

// AccessTokenValid reports whether token expires strictly after now.
// Any decoding failure counts as expired.
func AccessTokenValid(token string, now time.Time) bool {
	exp, ok := ParseAccessTokenExpiry(token)
	if !ok {
		return false
	}
	return exp.After(now)
}

func parseLenientExpiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return time.Time{}, false
	}

	payload, ok := decodeSegment(parts[1])
	if !ok {
		return time.Time{}, false
	}

	var claims struct {
		Exp *json.Number `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == nil {
		return time.Time{}, false
	}

	exp, err := claims.Exp.Float64()
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

func decodeSegment(seg string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	} {
		if b, err := enc.DecodeString(seg); err == nil {
			return b, true
		}
	}
	return nil, false
}
