// Package redis backs the refresh token revocation store with a Redis
// instance so revocation survives restarts and is shared across replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dhamen.org/internal/auth"
)

// Store is a Redis-backed auth.RevocationStore. Key TTLs are delegated to
// Redis itself.
type Store struct {
	client *redis.Client
}

var _ auth.RevocationStore = (*Store)(nil)

// Open connects to the Redis instance at addr and verifies the connection.
func Open(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

// New wraps an existing client, used by tests.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Put records value under key with the given TTL.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the live value for key or auth.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Delete removes key; Redis treats absent keys as a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
