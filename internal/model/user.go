package model

import "time"

// User is an end user who registered for an API key.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the dashboard projection of a User.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Dashboard is the admin overview of every user and key.
type Dashboard struct {
	Users []UserSummary   `json:"users"`
	Keys  []APIKeySummary `json:"keys"`
}
