package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialects, matching the directories under migrations/.
const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

// Migration is a single versioned schema change.
// Files are named <version>_<name>.up.sql and <version>_<name>.down.sql.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationRecord is a row in the schema_migrations table.
type MigrationRecord struct {
	Version   string
	AppliedAt time.Time
}

// MigrationState pairs a known migration with whether it has been applied.
type MigrationState struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// migrationDriver is the per-backend part of the migration runner.
// applyMigration and revertMigration must each run in their own transaction
// and update schema_migrations in that same transaction.
type migrationDriver interface {
	ensureMigrationsTable(ctx context.Context) error
	appliedMigrations(ctx context.Context) ([]MigrationRecord, error)
	applyMigration(ctx context.Context, m Migration) error
	revertMigration(ctx context.Context, m Migration) error
}

// loadMigrations reads every migration for a dialect, sorted by version.
func loadMigrations(dialect string) ([]Migration, error) {
	dir := path.Join("migrations", dialect)

	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir %s: %w", dir, err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, direction, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return nil, err
		}

		content, err := fs.ReadFile(migrationsFS, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.UpSQL = string(content)
		} else {
			m.DownSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %s (%s) has no up SQL", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseMigrationFilename splits "0001_init.up.sql" into ("0001", "init", "up").
func parseMigrationFilename(filename string) (version, name, direction string, err error) {
	base := strings.TrimSuffix(filename, ".sql")

	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
	case strings.HasSuffix(base, ".down"):
		direction = "down"
	default:
		return "", "", "", fmt.Errorf("migration %s: missing .up or .down suffix", filename)
	}
	base = strings.TrimSuffix(base, "."+direction)

	version, name, ok := strings.Cut(base, "_")
	if !ok || version == "" || name == "" {
		return "", "", "", fmt.Errorf("migration %s: expected <version>_<name>", filename)
	}

	return version, name, direction, nil
}

// migrateUp applies every pending migration in version order and returns
// how many were applied. Each migration is atomic on its own; a failure
// leaves earlier migrations committed.
func migrateUp(ctx context.Context, d migrationDriver, dialect string) (int, error) {
	if err := d.ensureMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations(dialect)
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := d.appliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting applied migrations: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, rec := range applied {
		appliedSet[rec.Version] = true
	}

	count := 0
	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		if err := d.applyMigration(ctx, m); err != nil {
			return count, fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
		count++
	}

	return count, nil
}

// migrateDown reverts the most recently applied migration.
// Returns nil, nil when nothing is applied.
func migrateDown(ctx context.Context, d migrationDriver, dialect string) (*Migration, error) {
	if err := d.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := d.appliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting applied migrations: %w", err)
	}
	if len(applied) == 0 {
		return nil, nil
	}
	latest := applied[len(applied)-1]

	migrations, err := loadMigrations(dialect)
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	for _, m := range migrations {
		if m.Version != latest.Version {
			continue
		}
		if m.DownSQL == "" {
			return nil, fmt.Errorf("migration %s has no down SQL", m.Version)
		}
		if err := d.revertMigration(ctx, m); err != nil {
			return nil, fmt.Errorf("reverting migration %s (%s): %w", m.Version, m.Name, err)
		}
		return &m, nil
	}

	return nil, fmt.Errorf("migration %s not found in embedded files", latest.Version)
}

// migrationStatus lists every embedded migration with its applied state.
func migrationStatus(ctx context.Context, d migrationDriver, dialect string) ([]MigrationState, error) {
	if err := d.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations(dialect)
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := d.appliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting applied migrations: %w", err)
	}

	appliedAt := make(map[string]time.Time, len(applied))
	for _, rec := range applied {
		appliedAt[rec.Version] = rec.AppliedAt
	}

	states := make([]MigrationState, 0, len(migrations))
	for _, m := range migrations {
		state := MigrationState{Version: m.Version, Name: m.Name}
		if at, ok := appliedAt[m.Version]; ok {
			at := at
			state.Applied = true
			state.AppliedAt = &at
		}
		states = append(states, state)
	}

	return states, nil
}
