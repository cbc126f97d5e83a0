// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/repository"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AdminStore is the persistence AdminService needs.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
	ListAPIKeys(ctx context.Context) ([]model.APIKeySummary, error)
}

// AdminService handles admin registration, login and the dashboard.
type AdminService struct {
	store   AdminStore
	token   string
	metrics metrics.Recorder
}

// NewAdminService creates a new AdminService. token is the static bearer
// token handed out on successful login.
func NewAdminService(store AdminStore, token string, recorder metrics.Recorder) *AdminService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AdminService{
		store:   store,
		token:   token,
		metrics: recorder,
	}
}

// Register stores a new admin with a hashed password.
func (s *AdminService) Register(ctx context.Context, email, password string) error {
	admin := &model.Admin{
		Email:        email,
		PasswordHash: auth.HashPassword(password),
	}

	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrEmailExists
		}
		return fmt.Errorf("create admin: %w", err)
	}

	s.metrics.IncAdminRegistered()
	return nil
}

// Login checks the credentials and returns the admin token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.IncAdminLogin(metrics.OutcomeFailure)
			return "", ErrInvalidCredentials
		}
		s.metrics.IncAdminLogin(metrics.OutcomeError)
		return "", fmt.Errorf("get admin: %w", err)
	}

	if !auth.VerifyPassword(password, admin.PasswordHash) {
		s.metrics.IncAdminLogin(metrics.OutcomeFailure)
		return "", ErrInvalidCredentials
	}

	s.metrics.IncAdminLogin(metrics.OutcomeSuccess)
	return s.token, nil
}

// Dashboard lists every user and every API key, newest first.
func (s *AdminService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	keys, err := s.store.ListAPIKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	return &model.Dashboard{Users: users, Keys: keys}, nil
}
