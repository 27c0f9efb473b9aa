package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakkerme/feedboard/internal/core"
)

const exampleConfig = `
site:
  base_url: "https://elternbeirat-kw.example"
  timezone: "Europe/Berlin"
feeds:
  - kind: events
    url: "data/termine.json"
    mount: "events"
  - name: presse
    kind: press
    url: "data/presse.json"
    mount: "news-grid"
    empty: "news-empty"
    more: "news-more"
  - name: aktuelles
    kind: news
    url: "https://elternbeirat-kw.example/feed.xml"
    format: rss
    mount: "blog-grid"
    text_format: markdown
    page_size: 4
messages:
  feed_empty: "Nichts da."
links:
  url: "data/links.json"
application:
  to: "buergermeisterin@stadt-kw.de"
scrape:
  source_url: "https://sessionnet.owl-it.de/koenigs_wusterhausen/bi/si0046.asp"
  allow_titles: ["Hauptausschuss"]
  default_duration: 2h
  schedule: "0 6 * * *"
`

func TestParseExampleConfig(t *testing.T) {
	doc, err := Parse([]byte(exampleConfig))
	require.NoError(t, err)

	require.Len(t, doc.Feeds, 3)
	events := doc.Feeds[0]
	assert.Equal(t, "events", events.Name)
	assert.Equal(t, 20, events.Limit)
	assert.Equal(t, 20, events.PageSize)
	assert.Equal(t, "json", events.Format)

	press, ok := doc.Feed("presse")
	require.True(t, ok)
	assert.Equal(t, core.KindPress, press.Kind)
	assert.Equal(t, 6, press.PageSize)
	assert.Equal(t, "plain", press.TextFormat)

	news, _ := doc.Feed("aktuelles")
	assert.Equal(t, 4, news.PageSize)
	assert.Equal(t, "markdown", news.TextFormat)

	assert.Equal(t, "Nichts da.", doc.Messages.FeedEmpty)
	assert.Equal(t, "Kurzinfo folgt.", doc.Messages.ExcerptFallback)
	assert.Equal(t, 200.0, doc.Media.RootMargin)
	assert.Equal(t, 0.1, doc.Media.Threshold)

	require.NotNil(t, doc.Scrape)
	assert.Equal(t, 200, doc.Scrape.MaxItems)
	assert.Equal(t, "Europe/Berlin", doc.Scrape.Timezone)
	assert.Equal(t, 2*time.Hour, doc.Scrape.DefaultDuration.Std())
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Feeds, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no feeds": `feeds: []`,
		"bad kind": `
feeds:
  - {kind: blog, url: x, mount: m}`,
		"missing url": `
feeds:
  - {kind: press, mount: m}`,
		"missing mount": `
feeds:
  - {kind: press, url: x}`,
		"events rss": `
feeds:
  - {kind: events, url: x, mount: m, format: rss}`,
		"unknown format": `
feeds:
  - {kind: press, url: x, mount: m, format: csv}`,
		"markdown press": `
feeds:
  - {kind: press, url: x, mount: m, text_format: markdown}`,
		"duplicate name": `
feeds:
  - {kind: press, url: x, mount: m}
  - {kind: press, url: y, mount: n}`,
		"bad base url": `
site: {base_url: "ftp://x"}
feeds:
  - {kind: press, url: x, mount: m}`,
		"bad application address": `
feeds:
  - {kind: press, url: x, mount: m}
application: {to: "not an address"}`,
		"scrape without filter": `
feeds:
  - {kind: press, url: x, mount: m}
scrape: {source_url: "https://example.com/list"}`,
		"threshold above one": `
feeds:
  - {kind: press, url: x, mount: m}
media: {threshold: 1.5}`,
		"bad duration": `
feeds:
  - {kind: press, url: x, mount: m}
scrape: {source_url: "https://example.com", rule: "true", default_duration: soon}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("FEEDBOARD_CONFIG", "")
	t.Setenv("HTTP_ATTEMPTS", "0")
	t.Setenv("HTTP_TIMEOUT", "1d")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2,broken")

	env := LoadEnv()
	assert.Equal(t, "feedboard.yaml", env.ConfigPath)
	assert.Equal(t, 1, env.HTTP.Attempts)
	assert.Equal(t, 24*time.Hour, env.HTTP.Timeout)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, env.OTel.Headers)
	assert.True(t, env.OTel.Insecure)
	assert.Equal(t, "feedboard", env.OTel.ServiceName)
}
