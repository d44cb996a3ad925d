package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 100_000
	hashSaltLen    = 16
	hashKeyLen     = 32
)

// Hasher derives and verifies salted PBKDF2-HMAC-SHA256 password hashes in
// the form $pbkdf2$<iterations>$<saltB64>$<hashB64>.
//
// The zero value is ready to use and refuses legacy bcrypt-prefixed hashes.
type Hasher struct {
	// legacySeedPassword, when non-empty, is accepted for any stored hash
	// bearing a bcrypt prefix ($2a$/$2b$). Pre-existing seed data still
	// carries such hashes; this shim verifies one fixed password instead of
	// implementing bcrypt, and must stay disabled outside development.
	legacySeedPassword string
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithLegacySeedPassword enables the bcrypt-prefix compatibility shim for
// the given fixed password.
func WithLegacySeedPassword(password string) HasherOption {
	return func(h *Hasher) {
		h.legacySeedPassword = password
	}
}

// NewHasher builds a Hasher.
func NewHasher(opts ...HasherOption) Hasher {
	var h Hasher
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Hash derives a hash of password under a fresh random salt. Two calls with
// the same password produce different outputs.
func (h Hasher) Hash(password string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, hashIterations, hashKeyLen, sha256.New)
	return fmt.Sprintf("$pbkdf2$%d$%s$%s",
		hashIterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the stored hash. Malformed stored
// values verify as false, never as an error.
func (h Hasher) Verify(password, stored string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") {
		if h.legacySeedPassword == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(password), []byte(h.legacySeedPassword)) == 1
	}
	if !strings.HasPrefix(stored, "$pbkdf2$") {
		return false
	}
	parts := strings.Split(stored, "$")
	if len(parts) != 5 {
		return false
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
