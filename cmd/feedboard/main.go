package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "feedboard",
		Usage: "Render and maintain the events, press and news feeds of the parents' initiative site",
		Description: `feedboard runs the feed pipeline (fetch, normalize, sort, paginate, lazy
media, render) against a host page and maintains the data files it reads.

Flags can generally be set via environment variables, e.g.:

--config => FEEDBOARD_CONFIG=feedboard.yaml
`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the feedboard document",
				Value:   "feedboard.yaml",
				EnvVars: []string{"FEEDBOARD_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			previewCmd(),
			scrapeCmd(),
			validateCmd(),
			applyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return cli.ShowAppHelp(ctx)
		},
	}
}
