package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bakkerme/feedboard/internal/core"
)

// Document is the top-level structure of a feedboard.yaml file.
type Document struct {
	Site        SiteConfig        `yaml:"site"`
	Feeds       []FeedConfig      `yaml:"feeds"`
	Messages    core.Messages     `yaml:"messages,omitempty"`
	Media       MediaConfig       `yaml:"media,omitempty"`
	Links       *LinksConfig      `yaml:"links,omitempty"`
	Application ApplicationConfig `yaml:"application,omitempty"`
	Scrape      *ScrapeConfig     `yaml:"scrape,omitempty"`
}

type SiteConfig struct {
	// BaseURL resolves relative links and images, like the page origin.
	BaseURL string `yaml:"base_url"`
	// Timezone names the zone dates are read in. Empty means the process zone.
	Timezone string `yaml:"timezone,omitempty"`
}

// FeedConfig binds one remote resource to a feed section of the host page.
type FeedConfig struct {
	Name       string    `yaml:"name"`
	Kind       core.Kind `yaml:"kind"`
	URL        string    `yaml:"url"`
	Format     string    `yaml:"format,omitempty"`
	Mount      string    `yaml:"mount"`
	Empty      string    `yaml:"empty,omitempty"`
	More       string    `yaml:"more,omitempty"`
	PageSize   int       `yaml:"page_size,omitempty"`
	Limit      int       `yaml:"limit,omitempty"`
	Alternates []string  `yaml:"alternates,omitempty"`
	TextFormat string    `yaml:"text_format,omitempty"`
}

type MediaConfig struct {
	RootMargin float64 `yaml:"root_margin,omitempty"`
	Threshold  float64 `yaml:"threshold,omitempty"`
	// ViewportHeight is the simulated viewport used by previews.
	ViewportHeight float64 `yaml:"viewport_height,omitempty"`
	// CardHeight is the simulated height of one media block.
	CardHeight float64 `yaml:"card_height,omitempty"`
}

// LinksConfig describes the site links resource and the anchors it fills.
type LinksConfig struct {
	URL     string            `yaml:"url"`
	Anchors map[string]string `yaml:"anchors,omitempty"`
	Texts   map[string]string `yaml:"texts,omitempty"`
}

// ApplicationConfig seeds the composed application message.
type ApplicationConfig struct {
	To          string   `yaml:"to,omitempty"`
	Subject     string   `yaml:"subject,omitempty"`
	Intro       []string `yaml:"intro,omitempty"`
	Closing     []string `yaml:"closing,omitempty"`
	OverrideURL string   `yaml:"override_url,omitempty"`
	From        string   `yaml:"from,omitempty"`
}

// ScrapeConfig drives the council session scraper.
type ScrapeConfig struct {
	SourceURL       string   `yaml:"source_url"`
	AllowTitles     []string `yaml:"allow_titles,omitempty"`
	Rule            string   `yaml:"rule,omitempty"`
	Timezone        string   `yaml:"timezone,omitempty"`
	MaxItems        int      `yaml:"max_items,omitempty"`
	DefaultDuration Duration `yaml:"default_duration,omitempty"`
	Schedule        string   `yaml:"schedule,omitempty"`
	JSONPath        string   `yaml:"json_path,omitempty"`
	ICSPath         string   `yaml:"ics_path,omitempty"`
}

const (
	DefaultEventPageSize = 20
	DefaultPageSize      = 6
	DefaultRootMargin    = 200
	DefaultThreshold     = 0.1
	DefaultViewport      = 800
	DefaultCardHeight    = 320
	DefaultScrapeMax     = 200
	DefaultScrapeZone    = "Europe/Berlin"
)

// Load reads, defaults and validates a document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a document from YAML, applies defaults and validates it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	doc.ApplyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ApplyDefaults fills every optional field that has a documented default.
func (d *Document) ApplyDefaults() {
	for i := range d.Feeds {
		f := &d.Feeds[i]
		if f.Format == "" {
			f.Format = "json"
		}
		if f.Name == "" {
			f.Name = string(f.Kind)
		}
		if f.Kind == core.KindEvents {
			if f.Limit <= 0 {
				f.Limit = DefaultEventPageSize
			}
			if f.PageSize <= 0 {
				f.PageSize = f.Limit
			}
		} else if f.PageSize <= 0 {
			f.PageSize = DefaultPageSize
		}
		if f.TextFormat == "" {
			f.TextFormat = "plain"
		}
	}
	d.Messages = d.Messages.WithDefaults()
	if d.Media.RootMargin <= 0 {
		d.Media.RootMargin = DefaultRootMargin
	}
	if d.Media.Threshold <= 0 {
		d.Media.Threshold = DefaultThreshold
	}
	if d.Media.ViewportHeight <= 0 {
		d.Media.ViewportHeight = DefaultViewport
	}
	if d.Media.CardHeight <= 0 {
		d.Media.CardHeight = DefaultCardHeight
	}
	if d.Scrape != nil {
		if d.Scrape.MaxItems <= 0 {
			d.Scrape.MaxItems = DefaultScrapeMax
		}
		if d.Scrape.Timezone == "" {
			d.Scrape.Timezone = DefaultScrapeZone
		}
	}
}

// Validate performs validation on the document.
func (d *Document) Validate() error {
	if d.Site.BaseURL != "" {
		if err := validateHTTPURL(d.Site.BaseURL); err != nil {
			return fmt.Errorf("site base_url: %w", err)
		}
	}
	if len(d.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}

	names := make(map[string]bool, len(d.Feeds))
	for i, f := range d.Feeds {
		if !f.Kind.Valid() {
			return fmt.Errorf("feed %d: unsupported kind %q", i, f.Kind)
		}
		if names[f.Name] {
			return fmt.Errorf("feed %d: duplicate name %q", i, f.Name)
		}
		names[f.Name] = true
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		if strings.TrimSpace(f.Mount) == "" {
			return fmt.Errorf("feed %q: mount is required", f.Name)
		}
		switch f.Format {
		case "json":
		case "rss":
			if f.Kind == core.KindEvents {
				return fmt.Errorf("feed %q: events cannot use the rss format", f.Name)
			}
		default:
			return fmt.Errorf("feed %q: unsupported format %q", f.Name, f.Format)
		}
		switch f.TextFormat {
		case "plain":
		case "markdown":
			if f.Kind != core.KindNews {
				return fmt.Errorf("feed %q: text_format markdown is only supported for news", f.Name)
			}
		default:
			return fmt.Errorf("feed %q: unsupported text_format %q", f.Name, f.TextFormat)
		}
		if f.PageSize < 0 || f.Limit < 0 {
			return fmt.Errorf("feed %q: page_size and limit must not be negative", f.Name)
		}
	}

	if d.Media.Threshold > 1 {
		return fmt.Errorf("media threshold must be within (0, 1]")
	}

	if d.Links != nil && strings.TrimSpace(d.Links.URL) == "" {
		return fmt.Errorf("links: url is required")
	}

	if to := d.Application.To; to != "" {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("application: invalid to address")
		}
	}
	if from := d.Application.From; from != "" { // From is optional, but if provided must be valid
		if _, err := mail.ParseAddress(from); err != nil {
			return fmt.Errorf("application: invalid from address")
		}
	}

	if s := d.Scrape; s != nil {
		if err := validateHTTPURL(s.SourceURL); err != nil {
			return fmt.Errorf("scrape source_url: %w", err)
		}
		if len(s.AllowTitles) == 0 && strings.TrimSpace(s.Rule) == "" {
			return fmt.Errorf("scrape: allow_titles or rule is required")
		}
	}
	return nil
}

// Feed returns the feed named name.
func (d *Document) Feed(name string) (FeedConfig, bool) {
	for _, f := range d.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return FeedConfig{}, false
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) url", raw)
	}
	return nil
}
