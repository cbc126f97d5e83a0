package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keydesk/keydesk/internal/model"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Common errors wrapped inside *Error values.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrAdminNotFound  = errors.New("admin not found")
	ErrAPIKeyConflict = errors.New("api key collision")
)

// PoolOptions bounds the connection pool.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// Postgres is the PostgreSQL-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres store with a connection pool.
func NewPostgres(ctx context.Context, databaseURL string, opts PoolOptions) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns >= 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Postgres) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Postgres) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Postgres.
func (r *Postgres) Pool() *pgxpool.Pool {
	return r.pool
}

// CreateAdmin inserts a new admin and fills in its ID and CreatedAt.
func (r *Postgres) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	const op = "postgres.CreateAdmin"
	query := `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, admin.Email, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(op, ErrEmailExists)
		}
		return internal(op, err)
	}

	return nil
}

// GetAdminByEmail retrieves an admin by email address.
func (r *Postgres) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	const op = "postgres.GetAdminByEmail"
	query := `
		SELECT id, email, password_hash, created_at
		FROM admins
		WHERE email = $1
	`

	var admin model.Admin
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(op, ErrAdminNotFound)
		}
		return nil, internal(op, err)
	}

	return &admin, nil
}

// CreateUserWithAPIKey inserts the user and its first API key on one
// dedicated connection inside one transaction. The connection goes back to
// the pool and the transaction is rolled back on every failure path.
func (r *Postgres) CreateUserWithAPIKey(ctx context.Context, user *model.User, issue KeyIssuer) (*model.APIKey, error) {
	const op = "postgres.CreateUserWithAPIKey"

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, internal(op, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, internal(op, fmt.Errorf("begin transaction: %w", err))
	}
	// Rollback is a no-op once Commit has succeeded.
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, user.FirstName, user.LastName, user.Email).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(op, ErrEmailExists)
		}
		return nil, internal(op, fmt.Errorf("insert user: %w", err))
	}

	key, err := issue(user.ID)
	if err != nil {
		return nil, internal(op, fmt.Errorf("issue api key: %w", err))
	}
	key.UserID = user.ID

	err = tx.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, api_key, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, key.UserID, key.Key, key.ExpiresAt).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Not a client conflict: the user did nothing wrong.
			return nil, internal(op, fmt.Errorf("insert api key: %w: %w", ErrAPIKeyConflict, err))
		}
		return nil, internal(op, fmt.Errorf("insert api key: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, internal(op, fmt.Errorf("commit: %w", err))
	}

	return key, nil
}

// ListUsers returns every user, newest first.
func (r *Postgres) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	const op = "postgres.ListUsers"
	query := `
		SELECT id, first_name, last_name, email
		FROM users
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, internal(op, err)
	}
	defer rows.Close()

	users := make([]model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, internal(op, fmt.Errorf("scan user: %w", err))
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, internal(op, fmt.Errorf("iterate users: %w", err))
	}

	return users, nil
}

// ListAPIKeys returns every API key, newest first.
func (r *Postgres) ListAPIKeys(ctx context.Context) ([]model.APIKeySummary, error) {
	const op = "postgres.ListAPIKeys"
	query := `
		SELECT id, user_id, api_key, expires_at
		FROM api_keys
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, internal(op, err)
	}
	defer rows.Close()

	keys := make([]model.APIKeySummary, 0)
	for rows.Next() {
		var k model.APIKeySummary
		if err := rows.Scan(&k.ID, &k.UserID, &k.Key, &k.ExpiresAt); err != nil {
			return nil, internal(op, fmt.Errorf("scan api key: %w", err))
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, internal(op, fmt.Errorf("iterate api keys: %w", err))
	}

	return keys, nil
}

// Migrate applies pending migrations and returns how many ran.
func (r *Postgres) Migrate(ctx context.Context) (int, error) {
	return migrateUp(ctx, r, dialectPostgres)
}

// MigrateDown reverts the latest applied migration.
func (r *Postgres) MigrateDown(ctx context.Context) (*Migration, error) {
	return migrateDown(ctx, r, dialectPostgres)
}

// MigrationStatus reports which migrations are applied.
func (r *Postgres) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	return migrationStatus(ctx, r, dialectPostgres)
}

func (r *Postgres) ensureMigrationsTable(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *Postgres) appliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var rec MigrationRecord
		if err := rows.Scan(&rec.Version, &rec.AppliedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Postgres) applyMigration(ctx context.Context, m Migration) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("executing up SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

func (r *Postgres) revertMigration(ctx context.Context, m Migration) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.DownSQL); err != nil {
			return fmt.Errorf("executing down SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.Version); err != nil {
			return fmt.Errorf("removing migration record: %w", err)
		}
		return nil
	})
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
