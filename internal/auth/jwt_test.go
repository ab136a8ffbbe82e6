package auth_test

import (
	"testing"
	"time"

	"github.com/rmacedo/custeio/internal/auth"
)

func manager() *auth.Manager {
	return auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := manager()

	token, err := m.GenerateAccessToken("u1", "joao@example.com", "admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "u1" || claims.Email != "joao@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	m := manager()

	token, err := m.GenerateAccessToken("u1", "joao@example.com", "user")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifyRefreshToken(token); err == nil {
		t.Fatalf("an access token must not pass refresh verification")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := manager()

	raw, jti, expiresAt, err := m.GenerateRefreshToken("u1", "joao@example.com", "user")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if jti == "" {
		t.Fatalf("expected a jti")
	}

	if !expiresAt.After(time.Now().Add(23 * time.Hour)) {
		t.Fatalf("refresh expiry too soon: %v", expiresAt)
	}

	claims, err := m.VerifyRefreshToken(raw)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.JTI != jti {
		t.Fatalf("jti mismatch: %q vs %q", claims.JTI, jti)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("a refresh token must not pass access verification")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := manager().GenerateAccessToken("u1", "joao@example.com", "user")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := auth.NewManager("different-secret", 15*time.Minute, 24*time.Hour)

	if _, err := other.VerifyAccessToken(token); err == nil {
		t.Fatalf("a token signed with another secret must fail")
	}
}

func TestHashRefreshTokenIsDeterministic(t *testing.T) {
	m := manager()

	a := m.HashRefreshToken("raw-token")
	b := m.HashRefreshToken("raw-token")
	c := m.HashRefreshToken("other-token")

	if a != b {
		t.Fatalf("same input must hash identically")
	}
	if a == c {
		t.Fatalf("different inputs must hash differently")
	}
	if a == "raw-token" {
		t.Fatalf("the raw token must not be stored as-is")
	}
}
