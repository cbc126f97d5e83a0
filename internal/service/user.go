package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/repository"
)

// UserStore is the persistence UserService needs.
type UserStore interface {
	CreateUserWithAPIKey(ctx context.Context, user *model.User, issue repository.KeyIssuer) (*model.APIKey, error)
}

// UserService registers users and issues their API key.
type UserService struct {
	store       UserStore
	ttlDays     int
	metrics     metrics.Recorder
	now         func() time.Time
	generateKey func() (string, error)
}

// NewUserService creates a new UserService. Keys expire ttlDays after
// issuance; a non-positive value uses auth.DefaultKeyTTLDays.
func NewUserService(store UserStore, ttlDays int, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if ttlDays <= 0 {
		ttlDays = auth.DefaultKeyTTLDays
	}
	return &UserService{
		store:       store,
		ttlDays:     ttlDays,
		metrics:     recorder,
		now:         time.Now,
		generateKey: auth.GenerateAPIKey,
	}
}

// Register creates the user and its API key in one transaction.
// The returned key is the only place the plaintext value is exposed.
func (s *UserService) Register(ctx context.Context, user *model.User) (*model.IssuedKey, error) {
	key, err := s.store.CreateUserWithAPIKey(ctx, user, s.issueKey)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.IncUserRegistered(metrics.OutcomeConflict)
			return nil, ErrEmailExists
		}
		s.metrics.IncUserRegistered(metrics.OutcomeError)
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.metrics.IncUserRegistered(metrics.OutcomeSuccess)
	return &model.IssuedKey{
		UserID:    key.UserID,
		Key:       key.Key,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

func (s *UserService) issueKey(userID int64) (*model.APIKey, error) {
	value, err := s.generateKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	return &model.APIKey{
		UserID:    userID,
		Key:       value,
		ExpiresAt: auth.ComputeExpiration(s.now(), s.ttlDays),
	}, nil
}
