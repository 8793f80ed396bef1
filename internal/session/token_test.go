package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

	got, err := Expiry(token)
	if err != nil {
		t.Fatalf("Expiry() error: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("Expiry() = %v, want %v", got, exp)
	}
}

func TestExpiry_NoClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "someone"})

	if _, err := Expiry(token); err == nil {
		t.Error("Expiry() succeeded for a token without an exp claim")
	}
}

func TestExpiry_Garbage(t *testing.T) {
	if _, err := Expiry("not-a-jwt"); err == nil {
		t.Error("Expiry() succeeded for garbage input")
	}
}

func TestNeedsRefresh(t *testing.T) {
	fresh := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	stale := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})

	if NeedsRefresh(fresh, 5*time.Minute) {
		t.Error("fresh token reported as needing refresh")
	}
	if !NeedsRefresh(stale, 5*time.Minute) {
		t.Error("token expiring inside the window not reported")
	}

	// Undecodable tokens must err on the side of refreshing.
	if !NeedsRefresh("garbage", 5*time.Minute) {
		t.Error("garbage token not reported as needing refresh")
	}
}
