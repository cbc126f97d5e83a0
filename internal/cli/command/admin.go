package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/keydesk/keydesk/internal/service"
)

// AdminCommand returns the admin subcommand group.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage admin accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Admin email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Admin password",
						EnvVars:  []string{"KEYDESK_ADMIN_PASSWORD"},
						Required: true,
					},
				},
				Action: adminCreate,
			},
		},
	}
}

func adminCreate(c *cli.Context) error {
	email := strings.TrimSpace(c.String("email"))
	password := c.String("password")
	if email == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("email and password must not be blank")
	}

	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	// The issued token is only used by Login, which this command never calls.
	svc := service.NewAdminService(store, "", nil)
	if err := svc.Register(ctx, email, password); err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			return fmt.Errorf("admin %s already exists", email)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Admin %s created.\n", email)
	return nil
}
