package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry reads the exp claim of a JWT without verifying its signature.
// The gateway never validates tokens (the backend does); the expiry is
// only used to schedule refreshes ahead of time.
func Expiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read expiry claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}

	return exp.Time, nil
}

// NeedsRefresh reports whether the token expires within the given window.
// Tokens that cannot be decoded are reported as needing a refresh so the
// backend gets a chance to replace them.
func NeedsRefresh(token string, within time.Duration) bool {
	exp, err := Expiry(token)
	if err != nil {
		return true
	}
	return time.Until(exp) < within
}
