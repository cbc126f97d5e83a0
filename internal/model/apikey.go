package model

import "time"

// APIKey is a key issued to a User at registration time.
// Expiration is recorded but not enforced by this service.
type APIKey struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Key       string    `json:"api_key"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the key is past its expiration at the given time.
func (k *APIKey) IsExpired(now time.Time) bool {
	return !now.Before(k.ExpiresAt)
}

// APIKeySummary is the dashboard projection of an APIKey.
type APIKeySummary struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Key       string    `json:"api_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssuedKey is what a user receives after registering.
// The plaintext key is only ever returned here.
type IssuedKey struct {
	UserID    int64
	Key       string
	ExpiresAt time.Time
}
