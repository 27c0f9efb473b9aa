package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/page"
)

func previewCmd() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Run one page session against a host document and write the result",
		Description: `Loads the host HTML page, runs every configured feed and the links
section against it, optionally simulates "load more" clicks and a scroll
position, and writes the resulting document.

Feed URLs resolve against site.base_url from the feedboard document.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Usage:    "Host HTML document containing the feed mount points",
				Required: true,
				EnvVars:  []string{"FEEDBOARD_HOST"},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the rendered document here instead of stdout",
			},
			&cli.IntFlag{
				Name:  "load-more",
				Usage: "Number of load-more clicks per feed",
			},
			&cli.StringSliceFlag{
				Name:  "feed",
				Usage: "Restrict load-more clicks to these feeds (default: all)",
			},
			&cli.Float64Flag{
				Name:  "scroll",
				Usage: "Scroll the simulated viewport to this offset after loading",
			},
			&cli.BoolFlag{
				Name:  "eager",
				Usage: "Apply deferred images immediately instead of on visibility",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()
			logger := core.LoggerFromContext(ctx)

			cfg, err := loadDocument(c)
			if err != nil {
				return err
			}
			host, err := os.Open(c.String("host"))
			if err != nil {
				return fmt.Errorf("open host document: %w", err)
			}
			doc, err := dom.Parse(host)
			host.Close()
			if err != nil {
				return err
			}

			var opts []page.Option
			if c.Bool("eager") {
				opts = append(opts, page.WithEagerMedia())
			}
			session, err := page.NewSession(rt.sessionID, doc, cfg, rt.fetcher(), opts...)
			if err != nil {
				return err
			}
			if err := session.Run(ctx); err != nil {
				return err
			}

			targets := c.StringSlice("feed")
			if len(targets) == 0 {
				for _, f := range session.Feeds() {
					targets = append(targets, f.Name())
				}
			}
			for i := 0; i < c.Int("load-more"); i++ {
				for _, name := range targets {
					if _, err := session.LoadMore(ctx, name); err != nil {
						return err
					}
				}
			}
			if c.IsSet("scroll") {
				session.Scroll(c.Float64("scroll"))
			}

			for _, f := range session.Feeds() {
				logger.Info("feed summary", "feed", f.Name(), "kind", string(f.Kind()), "state", string(f.State()))
			}
			logger.Info("media", "pending", session.PendingMedia())

			return writeDocument(doc, c.String("out"))
		},
	}
}

func writeDocument(doc *dom.Document, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return doc.Render(w)
}
