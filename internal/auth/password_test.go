package auth

import (
	"strings"
	"testing"
)

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewHasher()
	first, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
	if !strings.HasPrefix(first, "$pbkdf2$100000$") {
		t.Fatalf("unexpected hash format: %s", first)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	h := NewHasher()
	for _, password := range []string{
		"",
		"a",
		"correct horse battery staple",
		strings.Repeat("x", 1000),
		"médicament-Δ-密码",
	} {
		stored, err := h.Hash(password)
		if err != nil {
			t.Fatalf("Hash(%q): %v", password, err)
		}
		if !h.Verify(password, stored) {
			t.Fatalf("Verify failed for its own hash of %q", password)
		}
		if h.Verify(password+"!", stored) {
			t.Fatalf("wrong password verified for %q", password)
		}
	}
}

func TestVerifyMalformedStored(t *testing.T) {
	h := NewHasher()
	for _, stored := range []string{
		"",
		"plaintext",
		"$pbkdf2$",
		"$pbkdf2$abc$c2FsdA==$aGFzaA==",
		"$pbkdf2$-5$c2FsdA==$aGFzaA==",
		"$pbkdf2$100000$not-base64!$aGFzaA==",
		"$pbkdf2$100000$c2FsdA==$not-base64!",
		"$pbkdf2$100000$c2FsdA==$aGFzaA==$extra",
		"$pbkdf2$100000$c2FsdA==$",
		"$argon2id$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
	} {
		if h.Verify("whatever", stored) {
			t.Fatalf("malformed stored hash %q verified", stored)
		}
	}
}

func TestLegacySeedShim(t *testing.T) {
	legacyHash := "$2b$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	// Disabled by default: bcrypt-prefixed hashes never verify.
	if NewHasher().Verify("dhamen123", legacyHash) {
		t.Fatalf("legacy shim must be off for the zero-value hasher")
	}

	h := NewHasher(WithLegacySeedPassword("dhamen123"))
	if !h.Verify("dhamen123", legacyHash) {
		t.Fatalf("seed password rejected for legacy hash")
	}
	if !h.Verify("dhamen123", "$2a$10$anythingatall") {
		t.Fatalf("shim should key off the prefix, not the hash body")
	}
	if h.Verify("wrong", legacyHash) {
		t.Fatalf("non-seed password accepted for legacy hash")
	}
	// The shim never leaks into the PBKDF2 path.
	stored, err := h.Hash("modern")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h.Verify("dhamen123", stored) {
		t.Fatalf("seed password verified against a PBKDF2 hash")
	}
}
