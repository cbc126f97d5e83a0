// Package model defines domain entities for the application.
package model

import "time"

// Admin is an operator account. Admins are created once and never updated.
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}
