package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/keydesk/keydesk/internal/model"
)

// SQLite is the embedded Store used for local development and tests.
// A single open connection serializes writers; timestamps are assigned by
// the store in UTC so ordering is stable.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (creating if needed) the database file at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLite{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// sqliteDSN enables foreign keys and a busy timeout on every connection.
func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Set("_time_format", "sqlite")
	return path + "?" + params.Encode()
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() {
	_ = s.db.Close()
}

// DB returns the underlying handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// CreateAdmin inserts a new admin and fills in its ID and CreatedAt.
func (s *SQLite) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	const op = "sqlite.CreateAdmin"

	createdAt := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)`,
		admin.Email, admin.PasswordHash, createdAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return conflict(op, ErrEmailExists)
		}
		return internal(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return internal(op, fmt.Errorf("last insert id: %w", err))
	}

	admin.ID = id
	admin.CreatedAt = createdAt
	return nil
}

// GetAdminByEmail retrieves an admin by email address.
func (s *SQLite) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	const op = "sqlite.GetAdminByEmail"

	var admin model.Admin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = ?`,
		email,
	).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(op, ErrAdminNotFound)
		}
		return nil, internal(op, err)
	}

	return &admin, nil
}

// CreateUserWithAPIKey inserts the user and its first API key on one
// dedicated connection inside one transaction.
func (s *SQLite) CreateUserWithAPIKey(ctx context.Context, user *model.User, issue KeyIssuer) (*model.APIKey, error) {
	const op = "sqlite.CreateUserWithAPIKey"

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, internal(op, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal(op, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	createdAt := s.now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, createdAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, conflict(op, ErrEmailExists)
		}
		return nil, internal(op, fmt.Errorf("insert user: %w", err))
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return nil, internal(op, fmt.Errorf("last insert id: %w", err))
	}
	user.ID = userID
	user.CreatedAt = createdAt

	key, err := issue(user.ID)
	if err != nil {
		return nil, internal(op, fmt.Errorf("issue api key: %w", err))
	}
	key.UserID = user.ID
	key.CreatedAt = createdAt

	res, err = tx.ExecContext(ctx,
		`INSERT INTO api_keys (user_id, api_key, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		key.UserID, key.Key, key.ExpiresAt.UTC(), key.CreatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, internal(op, fmt.Errorf("insert api key: %w: %w", ErrAPIKeyConflict, err))
		}
		return nil, internal(op, fmt.Errorf("insert api key: %w", err))
	}
	if key.ID, err = res.LastInsertId(); err != nil {
		return nil, internal(op, fmt.Errorf("last insert id: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, internal(op, fmt.Errorf("commit: %w", err))
	}

	return key, nil
}

// ListUsers returns every user, newest first.
func (s *SQLite) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	const op = "sqlite.ListUsers"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email
		FROM users
		ORDER BY created_at DESC, id DESC
	`)
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
func (s *SQLite) ListAPIKeys(ctx context.Context) ([]model.APIKeySummary, error) {
	const op = "sqlite.ListAPIKeys"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, api_key, expires_at
		FROM api_keys
		ORDER BY created_at DESC, id DESC
	`)
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
func (s *SQLite) Migrate(ctx context.Context) (int, error) {
	return migrateUp(ctx, s, dialectSQLite)
}

// MigrateDown reverts the latest applied migration.
func (s *SQLite) MigrateDown(ctx context.Context) (*Migration, error) {
	return migrateDown(ctx, s, dialectSQLite)
}

// MigrationStatus reports which migrations are applied.
func (s *SQLite) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	return migrationStatus(ctx, s, dialectSQLite)
}

func (s *SQLite) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL
		)
	`)
	return err
}

func (s *SQLite) appliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
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

func (s *SQLite) applyMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("executing up SQL: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.Version, s.now(),
		); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

func (s *SQLite) revertMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
			return fmt.Errorf("executing down SQL: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.Version); err != nil {
			return fmt.Errorf("removing migration record: %w", err)
		}
		return nil
	})
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// isSQLiteUniqueViolation reports UNIQUE and PRIMARY KEY constraint failures.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}

	// Primary result code only; fall back to the message.
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}
