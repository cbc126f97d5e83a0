// Package auth provides credential utilities: password digests, API key
// generation and bearer token checks.
package auth

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// PasswordHashLen is the length of a hex encoded SHA3-256 digest.
const PasswordHashLen = 64

// HashPassword returns the SHA3-256 digest of password, hex encoded.
// The digest is unsalted and deterministic: the same input always yields
// the same output, which is what login comparison relies on.
func HashPassword(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword hashes password and compares it to storedHash.
// Uses constant-time comparison to prevent timing attacks.
func VerifyPassword(password, storedHash string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
