// Package command provides CLI command definitions for keydeskctl.
//
// It uses urfave/cli/v2 for command parsing. Every command reads the same
// DB_* environment as the API server and talks to the store directly.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keydesk/keydesk/internal/config"
	"github.com/keydesk/keydesk/internal/repository"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// App.Metadata keys.
const (
	openerKey = "opener"
	storeKey  = "store"
)

// commandTimeout bounds every store operation a command performs.
const commandTimeout = 30 * time.Second

// Opener opens the store a command operates on.
type Opener func(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error)

// App creates the CLI application. A nil open uses repository.Open.
func App(open Opener) *cli.App {
	if open == nil {
		open = repository.Open
	}

	return &cli.App{
		Name:    "keydeskctl",
		Usage:   "Keydesk operator tool",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Commands: []*cli.Command{
			MigrateCommand(),
			AdminCommand(),
		},
		Before: func(c *cli.Context) error {
			c.App.Metadata[openerKey] = open
			return nil
		},
		After: func(c *cli.Context) error {
			if store, ok := c.App.Metadata[storeKey].(repository.Store); ok {
				store.Close()
			}
			return nil
		},
	}
}

// storeFrom opens the store on first use so help and version never
// touch the database.
func storeFrom(c *cli.Context) (repository.Store, error) {
	if store, ok := c.App.Metadata[storeKey].(repository.Store); ok {
		return store, nil
	}

	open, ok := c.App.Metadata[openerKey].(Opener)
	if !ok {
		return nil, fmt.Errorf("store opener not configured")
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	store, err := open(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	c.App.Metadata[storeKey] = store
	return store, nil
}

// withTimeout derives the per-command context.
func withTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, commandTimeout)
}
