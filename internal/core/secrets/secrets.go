// Package secrets implements the password-hashing primitive: an HMAC-SHA256
// keyed hash over salt || secret, verified in constant time.
//
// The salt defeats precomputed-table attacks and the server-held key means an
// attacker needs more than a database dump to verify guesses offline. This is
// deliberately weaker than a memory-hard KDF; swapping in argon2id is the
// documented upgrade path, but it changes the stored hash format and must be
// done with a migration, not silently.
package secrets

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/courtside/accounts-api/internal/core/domain"
)

// SaltLen is the fixed salt length in bytes. Salts are generated once at
// signup and regenerated on every password change.
const SaltLen = 32

// GenerateSalt returns SaltLen cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// HashSecret computes HMAC-SHA256(key, salt || plain). Deterministic for
// identical inputs, which verification depends on.
func HashSecret(plain string, salt, key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(salt)
	mac.Write([]byte(plain))
	return mac.Sum(nil)
}

// VerifySecret recomputes the MAC for candidate and compares it to target in
// constant time. Returns domain.ErrWrongPassword on mismatch, including
// attacker-controlled target lengths.
func VerifySecret(candidate string, salt, key, target []byte) error {
	computed := HashSecret(candidate, salt, key)
	if !hmac.Equal(computed, target) {
		return domain.ErrWrongPassword
	}
	return nil
}
