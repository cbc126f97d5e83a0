package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	// ErrMissingToken indicates no Authorization header was sent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrMalformedToken indicates the header is not "Bearer <token>".
	ErrMalformedToken = errors.New("malformed bearer token")
)

const bearerScheme = "Bearer"

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrMalformedToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedToken
	}

	return token, nil
}

// TokenMatches compares a presented token against the expected secret in
// constant time. An empty expected secret never matches.
func TokenMatches(presented, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
