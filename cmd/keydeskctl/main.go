// Package main is the entrypoint for keydeskctl, the Keydesk operator tool.
package main

import (
	"fmt"
	"os"

	"github.com/keydesk/keydesk/internal/cli/command"
)

func main() {
	if err := command.App(nil).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
