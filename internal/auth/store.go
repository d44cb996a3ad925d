package auth

import (
	"context"
	"time"
)

// UserStore supplies the current user record. The gateway re-reads it on
// every refresh so role and tenant changes take effect immediately.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// RevocationStore records the single currently valid refresh token per
// subject. Any key-value store with TTL support can back it; the gateway
// assumes nothing beyond these three operations.
type RevocationStore interface {
	// Put records value under key, expiring after ttl. An existing value
	// is overwritten.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the live value for key, or ErrNotFound when the key is
	// absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
