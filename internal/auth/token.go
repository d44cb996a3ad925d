package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"dhamen.org/internal/authz"
)

// Issuer is the iss claim stamped into and required from every token.
const Issuer = "dhamen"

// b64 rejects non-canonical trailing bits on decode, so no two distinct
// token strings ever decode to the same signature.
var b64 = base64.RawURLEncoding.Strict()

// kindRefresh is the type claim carried only by refresh tokens.
const kindRefresh = "refresh"

// AccessClaims is the payload of an access token. Role and tenant linkage
// ride in the token so protected requests need no user lookup.
type AccessClaims struct {
	Subject    string     `json:"sub"`
	Role       authz.Role `json:"role"`
	ProviderID string     `json:"providerId,omitempty"`
	InsurerID  string     `json:"insurerId,omitempty"`
	IssuedAt   int64      `json:"iat"`
	ExpiresAt  int64      `json:"exp"`
	Issuer     string     `json:"iss"`
}

// RefreshClaims is the payload of a refresh token. It deliberately carries
// no role or tenant data: the access token is re-derived from the current
// user record on every refresh, so role changes take effect immediately.
type RefreshClaims struct {
	Subject   string `json:"sub"`
	Kind      string `json:"type"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Issuer    string `json:"iss"`
}

// Tokens signs and verifies HS256 compact-serialized tokens. It is a pure
// function of its inputs, the secret and the injected clock; it never
// touches storage and is safe for concurrent use.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// TokensOption configures a Tokens codec.
type TokensOption func(*Tokens)

// WithTokenClock overrides the time source, used by tests to cross expiry
// boundaries without sleeping.
func WithTokenClock(fn func() time.Time) TokensOption {
	return func(t *Tokens) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokens builds a codec around the signing secret.
func NewTokens(secret []byte, opts ...TokensOption) *Tokens {
	t := &Tokens{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// SignAccess issues an access token for the given identity, valid from now
// through now+ttl inclusive.
func (t *Tokens) SignAccess(claims AccessClaims, ttl time.Duration) (string, error) {
	now := t.now().Unix()
	claims.IssuedAt = now
	claims.ExpiresAt = now + int64(ttl/time.Second)
	claims.Issuer = Issuer
	return t.sign(claims)
}

// SignRefresh issues a refresh token for subject.
func (t *Tokens) SignRefresh(subject string, ttl time.Duration) (string, error) {
	now := t.now().Unix()
	return t.sign(RefreshClaims{
		Subject:   subject,
		Kind:      kindRefresh,
		IssuedAt:  now,
		ExpiresAt: now + int64(ttl/time.Second),
		Issuer:    Issuer,
	})
}

func (t *Tokens) sign(payload any) (string, error) {
	headerJSON, err := json.Marshal(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	signingString := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	sig := hmacSign([]byte(signingString), t.secret)
	return signingString + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// VerifyAccess checks the token signature, expiry and issuer and returns the
// embedded claims. Every failure collapses into ErrInvalidToken.
func (t *Tokens) VerifyAccess(token string) (AccessClaims, error) {
	payload, err := t.verify(token)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	var claims AccessClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	// A refresh token carries the refresh type claim; it must never pass as
	// an access token.
	var kind struct {
		Kind string `json:"type"`
	}
	if err := json.Unmarshal(payload, &kind); err != nil || kind.Kind == kindRefresh {
		return AccessClaims{}, ErrInvalidToken
	}
	if err := t.checkCommon(claims.ExpiresAt, claims.Issuer); err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh is VerifyAccess for refresh tokens; it additionally requires
// the refresh type claim, so access tokens never pass as refresh tokens.
func (t *Tokens) VerifyRefresh(token string) (RefreshClaims, error) {
	payload, err := t.verify(token)
	if err != nil {
		return RefreshClaims{}, ErrInvalidToken
	}
	var claims RefreshClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return RefreshClaims{}, ErrInvalidToken
	}
	if err := t.checkCommon(claims.ExpiresAt, claims.Issuer); err != nil {
		return RefreshClaims{}, ErrInvalidToken
	}
	if claims.Kind != kindRefresh {
		return RefreshClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// verify authenticates the token envelope and returns the raw payload JSON.
// The signature is checked before any part of the payload is decoded.
func (t *Tokens) verify(token string) ([]byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrInvalidToken
	}
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	expected := hmacSign([]byte(parts[0]+"."+parts[1]), t.secret)
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return nil, ErrInvalidToken
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	return payload, nil
}

// checkCommon enforces expiry and issuer. A token is valid through its exact
// expiry second and invalid the second after.
func (t *Tokens) checkCommon(expiresAt int64, issuer string) error {
	if expiresAt < t.now().Unix() {
		return ErrInvalidToken
	}
	if issuer != Issuer {
		return ErrInvalidToken
	}
	return nil
}

func hmacSign(data, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(data)
	return mac.Sum(nil)
}
