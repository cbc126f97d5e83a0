// Package repository provides database access layer.
//
// Two stores implement Store: Postgres (pgxpool) for production and SQLite
// (modernc.org/sqlite) for local development and hermetic tests. Both
// translate driver errors into *Error values carrying a Kind, so callers
// never see driver-specific error codes.
package repository

import (
	"context"
	"fmt"

	"github.com/keydesk/keydesk/internal/config"
	"github.com/keydesk/keydesk/internal/model"
)

// KeyIssuer produces the API key for a freshly inserted user. It runs inside
// the registration transaction; returning an error rolls the user back.
type KeyIssuer func(userID int64) (*model.APIKey, error)

// Store is the persistence contract shared by every backend.
type Store interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)

	// CreateUserWithAPIKey inserts user and the key returned by issue in a
	// single transaction. On success both IDs and timestamps are populated
	// and the inserted key is returned.
	CreateUserWithAPIKey(ctx context.Context, user *model.User, issue KeyIssuer) (*model.APIKey, error)

	ListUsers(ctx context.Context) ([]model.UserSummary, error)
	ListAPIKeys(ctx context.Context) ([]model.APIKeySummary, error)

	Migrate(ctx context.Context) (int, error)
	MigrateDown(ctx context.Context) (*Migration, error)
	MigrationStatus(ctx context.Context) ([]MigrationState, error)

	Ping(ctx context.Context) error
	Close()
}

// Compile-time interface checks.
var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.ConnectionURL(), PoolOptions{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite:
		lite, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
