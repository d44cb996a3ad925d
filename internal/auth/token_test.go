package auth

import (
	"strings"
	"testing"
	"time"

	"dhamen.org/internal/authz"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := NewTokens([]byte("test-secret"), WithTokenClock(fixedClock(now)))

	token, err := codec.SignAccess(AccessClaims{
		Subject:    "user-1",
		Role:       authz.RolePharmacist,
		ProviderID: "prov-9",
	}, 15*time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	claims, err := codec.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != authz.RolePharmacist || claims.ProviderID != "prov-9" {
		t.Fatalf("claims not preserved: %+v", claims)
	}
	if claims.InsurerID != "" {
		t.Fatalf("unexpected insurer linkage: %q", claims.InsurerID)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}
	if claims.IssuedAt != now.Unix() || claims.ExpiresAt != now.Unix()+900 {
		t.Fatalf("unexpected timestamps: iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestTokenTamperSensitivity(t *testing.T) {
	codec := NewTokens([]byte("test-secret"))
	token, err := codec.SignAccess(AccessClaims{Subject: "user-1", Role: authz.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		flip := byte('A')
		if token[i] == 'A' {
			flip = 'B'
		}
		mutated := token[:i] + string(flip) + token[i+1:]
		if _, err := codec.VerifyAccess(mutated); err == nil {
			t.Fatalf("tampered token at offset %d verified", i)
		}
	}
}

func TestTokenCrossSecretRejection(t *testing.T) {
	signer := NewTokens([]byte("secret-a"))
	verifier := NewTokens([]byte("secret-b"))

	token, err := signer.SignAccess(AccessClaims{Subject: "user-1", Role: authz.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	if _, err := verifier.VerifyAccess(token); err == nil {
		t.Fatalf("token verified under the wrong secret")
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	codec := NewTokens([]byte("test-secret"), WithTokenClock(fixedClock(issued)))

	token, err := codec.SignAccess(AccessClaims{Subject: "user-1", Role: authz.RoleAdmin}, 30*time.Second)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	// Valid through the exact expiry second.
	codec.now = fixedClock(issued.Add(30 * time.Second))
	if _, err := codec.VerifyAccess(token); err != nil {
		t.Fatalf("token should be valid at its expiry second: %v", err)
	}

	// Invalid the second after.
	codec.now = fixedClock(issued.Add(31 * time.Second))
	if _, err := codec.VerifyAccess(token); err == nil {
		t.Fatalf("token should be invalid past its expiry second")
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	codec := NewTokens([]byte("test-secret"))

	access, err := codec.SignAccess(AccessClaims{Subject: "user-1", Role: authz.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	refresh, err := codec.SignRefresh("user-1", time.Minute)
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	if _, err := codec.VerifyRefresh(access); err == nil {
		t.Fatalf("access token passed refresh verification")
	}
	if _, err := codec.VerifyAccess(refresh); err == nil {
		t.Fatalf("refresh token passed access verification")
	}
	claims, err := codec.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.Subject != "user-1" || claims.Kind != "refresh" {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}
}

func TestTokenMalformedInputs(t *testing.T) {
	codec := NewTokens([]byte("test-secret"))
	for _, token := range []string{
		"",
		"justonepart",
		"two.parts",
		"a.b.c.d",
		"..",
		"a..c",
		strings.Repeat(".", 2),
		"!!!.@@@.###",
	} {
		if _, err := codec.VerifyAccess(token); err == nil {
			t.Fatalf("malformed token %q verified", token)
		}
		if _, err := codec.VerifyRefresh(token); err == nil {
			t.Fatalf("malformed refresh token %q verified", token)
		}
	}
}

func TestTokenIssuerMismatch(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := NewTokens([]byte("test-secret"), WithTokenClock(fixedClock(now)))

	// A well-signed payload with a foreign issuer must be rejected.
	token, err := codec.sign(AccessClaims{
		Subject:   "user-1",
		Role:      authz.RoleAdmin,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Unix() + 60,
		Issuer:    "someone-else",
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.VerifyAccess(token); err == nil {
		t.Fatalf("foreign issuer accepted")
	}
}

func TestVerificationErrorsAreOpaque(t *testing.T) {
	codec := NewTokens([]byte("test-secret"))
	expired := NewTokens([]byte("test-secret"), WithTokenClock(fixedClock(time.Unix(100, 0))))

	expiredToken, err := expired.SignAccess(AccessClaims{Subject: "u", Role: authz.RoleAdmin}, time.Second)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	foreign, err := NewTokens([]byte("other")).SignAccess(AccessClaims{Subject: "u", Role: authz.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	for _, token := range []string{"garbage", expiredToken, foreign} {
		if _, err := codec.VerifyAccess(token); err != ErrInvalidToken {
			t.Fatalf("expected opaque ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
