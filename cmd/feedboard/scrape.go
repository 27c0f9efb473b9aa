package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/scrape"
	"github.com/bakkerme/feedboard/internal/sources/feedjson/impl"
	"github.com/bakkerme/feedboard/internal/trigger"
)

func scrapeCmd() *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Write termine.json and termine.ics from the council session listing",
		Description: `Fetches the municipal session list, keeps upcoming sessions of the
allowed committees and writes them as JSON for the events feed and as an
iCalendar file.

Settings come from the scrape section of the feedboard document when it
exists; flags override them.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Session list URL",
				EnvVars: []string{"SCRAPE_SOURCE_URL"},
			},
			&cli.StringFlag{
				Name:  "json",
				Usage: "Output path of the session list",
				Value: "data/termine.json",
			},
			&cli.StringFlag{
				Name:  "ics",
				Usage: "Output path of the calendar",
				Value: "data/termine.ics",
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule; run once when empty",
				EnvVars: []string{"SCRAPE_SCHEDULE"},
			},
		},
		Action: func(c *cli.Context) error {
			ctx, rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()

			cfg, err := loadOptionalDocument(c)
			if err != nil {
				return err
			}
			settings := scrapeSettings(c, cfg)

			loc, err := time.LoadLocation(settings.Timezone)
			if err != nil {
				return fmt.Errorf("scrape timezone: %w", err)
			}
			filter, err := scrape.NewFilter(settings.Rule, settings.AllowTitles)
			if err != nil {
				return err
			}
			scraper := &scrape.Scraper{
				SourceURL: settings.SourceURL,
				Fetcher:   rt.fetcher(impl.WithoutCacheBusting()),
				Filter:    filter,
				Location:  loc,
				MaxItems:  settings.MaxItems,
			}
			job := func(ctx context.Context) error {
				return runScrape(ctx, scraper, settings)
			}

			if settings.Schedule == "" {
				return job(ctx)
			}
			err = trigger.Run(ctx, trigger.NewCron(settings.Schedule, settings.Timezone), "scrape", job)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// scrapeSettings merges the document's scrape section, flags and defaults.
func scrapeSettings(c *cli.Context, cfg *config.Document) config.ScrapeConfig {
	var s config.ScrapeConfig
	if cfg != nil && cfg.Scrape != nil {
		s = *cfg.Scrape
	}
	if c.IsSet("source") || s.SourceURL == "" {
		s.SourceURL = c.String("source")
	}
	if s.SourceURL == "" {
		s.SourceURL = scrape.DefaultSourceURL
	}
	if len(s.AllowTitles) == 0 {
		s.AllowTitles = scrape.DefaultAllowTitles
	}
	if s.Timezone == "" {
		s.Timezone = config.DefaultScrapeZone
	}
	if s.MaxItems <= 0 {
		s.MaxItems = config.DefaultScrapeMax
	}
	if c.IsSet("json") || s.JSONPath == "" {
		s.JSONPath = c.String("json")
	}
	if c.IsSet("ics") || s.ICSPath == "" {
		s.ICSPath = c.String("ics")
	}
	if c.IsSet("schedule") {
		s.Schedule = c.String("schedule")
	}
	return s
}

func runScrape(ctx context.Context, scraper *scrape.Scraper, s config.ScrapeConfig) error {
	result, err := scraper.Run(ctx)
	if err != nil {
		return err
	}
	data, err := scrape.EncodeJSON(result)
	if err != nil {
		return err
	}
	if err := scrape.WriteFile(s.JSONPath, data); err != nil {
		return err
	}
	ics := scrape.ICS(result.Items, scraper.Location, s.DefaultDuration.Std(), time.Now())
	if err := scrape.WriteFile(s.ICSPath, []byte(ics)); err != nil {
		return err
	}
	core.LoggerFromContext(ctx).Info("session files written", "items", len(result.Items), "json", s.JSONPath, "ics", s.ICSPath)
	return nil
}
