package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

const (
	// APIKeyBytes is the amount of entropy in a generated key.
	APIKeyBytes = 32
	// APIKeyLen is the length of a generated key (hex encoded).
	APIKeyLen = APIKeyBytes * 2

	// DefaultKeyTTLDays is how long an issued key is valid by default.
	DefaultKeyTTLDays = 30
)

var keyFormatRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateAPIKey returns a new random API key: 32 bytes from crypto/rand,
// hex encoded to 64 lowercase characters.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, APIKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidateAPIKeyFormat checks if the key matches the generated format.
func ValidateAPIKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}

// ComputeExpiration returns now plus the given number of days, in UTC.
// Non-positive values fall back to DefaultKeyTTLDays.
func ComputeExpiration(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultKeyTTLDays
	}
	return now.UTC().AddDate(0, 0, days)
}
