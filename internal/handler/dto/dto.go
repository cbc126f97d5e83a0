// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keydesk/keydesk/internal/model"
)

// Field limits, matching the column widths.
const (
	MaxEmailLength    = 255
	MaxNameLength     = 100
	MaxPasswordLength = 1024
)

// ErrValidation is wrapped by every Validate failure.
var ErrValidation = errors.New("validation failed")

// AdminCredentialsRequest is the body of admin register and login.
type AdminCredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims the email and checks required fields.
// The password is not trimmed; whitespace-only still counts as missing.
func (r *AdminCredentialsRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)

	if err := required("email", r.Email, MaxEmailLength); err != nil {
		return err
	}
	if strings.TrimSpace(r.Password) == "" {
		return fieldError("password is required")
	}
	if len(r.Password) > MaxPasswordLength {
		return fieldError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

// RegisterUserRequest is the body of user registration.
type RegisterUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Validate trims every field and checks it is present and within limits.
func (r *RegisterUserRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)

	if err := required("first_name", r.FirstName, MaxNameLength); err != nil {
		return err
	}
	if err := required("last_name", r.LastName, MaxNameLength); err != nil {
		return err
	}
	return required("email", r.Email, MaxEmailLength)
}

// ToUser converts a validated request into an unsaved User.
func (r *RegisterUserRequest) ToUser() *model.User {
	return &model.User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the admin bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// DashboardResponse lists every user and key.
type DashboardResponse struct {
	Users []model.UserSummary   `json:"users"`
	Keys  []model.APIKeySummary `json:"keys"`
}

// ToDashboardResponse converts a Dashboard, never emitting null lists.
func ToDashboardResponse(d *model.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Users: d.Users,
		Keys:  d.Keys,
	}
	if resp.Users == nil {
		resp.Users = []model.UserSummary{}
	}
	if resp.Keys == nil {
		resp.Keys = []model.APIKeySummary{}
	}
	return resp
}

// RegisterUserResponse returns the plaintext key exactly once.
type RegisterUserResponse struct {
	APIKey    string `json:"apiKey"`
	ExpiresAt string `json:"expiresAt"`
}

// ToRegisterUserResponse converts an IssuedKey.
func ToRegisterUserResponse(k *model.IssuedKey) RegisterUserResponse {
	return RegisterUserResponse{
		APIKey:    k.Key,
		ExpiresAt: k.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// ErrorBody is the inner error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

func required(field, value string, maxLen int) error {
	if value == "" {
		return fieldError(field + " is required")
	}
	if len(value) > maxLen {
		return fieldError(fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return nil
}

func fieldError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
