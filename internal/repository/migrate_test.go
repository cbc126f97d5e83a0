package repository

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename  string
		version   string
		name      string
		direction string
		wantErr   bool
	}{
		{"0001_init.up.sql", "0001", "init", "up", false},
		{"0001_init.down.sql", "0001", "init", "down", false},
		{"0002_add_user_index.up.sql", "0002", "add_user_index", "up", false},
		{"0001_init.sql", "", "", "", true},
		{"init.up.sql", "", "", "", true},
		{"0001_.up.sql", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, direction, err := parseMigrationFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if version != tt.version || name != tt.name || direction != tt.direction {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					version, name, direction, tt.version, tt.name, tt.direction)
			}
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	for _, dialect := range []string{dialectPostgres, dialectSQLite} {
		t.Run(dialect, func(t *testing.T) {
			migrations, err := loadMigrations(dialect)
			if err != nil {
				t.Fatalf("loadMigrations failed: %v", err)
			}
			if len(migrations) == 0 {
				t.Fatal("expected at least one migration")
			}
			if migrations[0].Version != "0001" {
				t.Errorf("first version = %q, want 0001", migrations[0].Version)
			}
			for i, m := range migrations {
				if m.UpSQL == "" || m.DownSQL == "" {
					t.Errorf("migration %s missing up or down SQL", m.Version)
				}
				if i > 0 && migrations[i-1].Version >= m.Version {
					t.Errorf("migrations not sorted at %d", i)
				}
			}
		})
	}
}

func TestLoadMigrations_UnknownDialect(t *testing.T) {
	if _, err := loadMigrations("oracle"); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

func TestError_Matching(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name         string
		err          error
		kind         Kind
		isConflict   bool
		isNotFound   bool
		unwrapsCause bool
	}{
		{"conflict", conflict("op", cause), KindConflict, true, false, true},
		{"not found", notFound("op", cause), KindNotFound, false, true, true},
		{"internal", internal("op", cause), KindInternal, false, false, true},
		{"wrapped conflict", fmt.Errorf("outer: %w", conflict("op", cause)), KindConflict, true, false, true},
		{"plain error", cause, KindInternal, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %s, want %s", got, tt.kind)
			}
			if got := errors.Is(tt.err, ErrConflict); got != tt.isConflict {
				t.Errorf("Is(ErrConflict) = %v, want %v", got, tt.isConflict)
			}
			if got := errors.Is(tt.err, ErrNotFound); got != tt.isNotFound {
				t.Errorf("Is(ErrNotFound) = %v, want %v", got, tt.isNotFound)
			}
			if got := errors.Is(tt.err, cause); got != tt.unwrapsCause {
				t.Errorf("Is(cause) = %v, want %v", got, tt.unwrapsCause)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := conflict("postgres.CreateAdmin", ErrEmailExists)
	want := "postgres.CreateAdmin: conflict: email already exists"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
