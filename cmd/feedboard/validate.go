package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bakkerme/feedboard/internal/validate"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a press payload before publishing it",
		ArgsUsage: "<presse.json>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = "data/presse.json"
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Fehler: %v", err), 1)
			}
			n, err := validate.Press(data)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Fehler: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "OK: %d Einträge geprüft\n", n)
			return nil
		},
	}
}
