package command

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
)

// MigrateCommand returns the migrate subcommand group.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply every pending migration",
				Action: migrateUp,
			},
			{
				Name:   "down",
				Usage:  "Revert the most recently applied migration",
				Action: migrateDown,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: migrateStatus,
			},
		},
	}
}

func migrateUp(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	if applied == 0 {
		fmt.Fprintln(c.App.Writer, "Schema is up to date.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Applied %d migration(s).\n", applied)
	return nil
}

func migrateDown(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	reverted, err := store.MigrateDown(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}

	if reverted == nil {
		fmt.Fprintln(c.App.Writer, "No migrations to revert.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Reverted %s_%s.\n", reverted.Version, reverted.Name)
	return nil
}

func migrateStatus(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	states, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED AT")
	for _, s := range states {
		appliedAt := "pending"
		if s.Applied && s.AppliedAt != nil {
			appliedAt = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Version, s.Name, appliedAt)
	}
	return tw.Flush()
}
