package auth

import "errors"

var (
	// ErrInvalidToken is the single opaque result for every token
	// verification failure. Callers are never told whether the signature,
	// expiry, issuer or shape was at fault.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnauthorized covers every authentication failure at the gateway
	// boundary: unknown user, inactive account, bad password, revoked or
	// superseded refresh token.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrForbidden means identity was established but privilege is lacking.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrNotFound is returned by collaborator stores for absent records.
	ErrNotFound = errors.New("auth: not found")
)
