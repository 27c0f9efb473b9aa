// Package page runs one page session: every configured feed plus the links
// section, mounted into a single host document.
package page

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dates"
	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/feed"
	"github.com/bakkerme/feedboard/internal/links"
	"github.com/bakkerme/feedboard/internal/media"
	"github.com/bakkerme/feedboard/internal/observability/otelx"
	"github.com/bakkerme/feedboard/internal/render"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

// Session is the in-memory state of one page load. It is discarded afterwards.
type Session struct {
	ID       string
	doc      *dom.Document
	feeds    []feed.Feed
	byName   map[string]feed.Feed
	links    *links.Section
	loader   *media.Loader
	viewport *media.ViewportObserver
}

type options struct {
	eager bool
}

// Option customizes a Session.
type Option func(*options)

// WithEagerMedia disables visibility observation; every deferred image is
// applied as soon as its card is rendered.
func WithEagerMedia() Option {
	return func(o *options) { o.eager = true }
}

// NewSession wires controllers for every feed in cfg against doc.
func NewSession(id string, doc *dom.Document, cfg *config.Document, fetcher feedjson.Fetcher, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	parser := dates.Local
	if cfg.Site.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Site.Timezone)
		if err != nil {
			return nil, fmt.Errorf("site timezone: %w", err)
		}
		parser = dates.Parser{Location: loc}
	}

	urls := render.NewURLPolicy(cfg.Site.BaseURL)
	s := &Session{ID: id, doc: doc, byName: make(map[string]feed.Feed)}

	var observer media.Observer
	if !o.eager {
		s.viewport = media.NewViewportObserver(
			media.FlowLayout{Root: doc.Root(), ItemHeight: cfg.Media.CardHeight},
			cfg.Media.ViewportHeight,
			media.WithRootMargin(cfg.Media.RootMargin),
			media.WithThreshold(cfg.Media.Threshold),
		)
		observer = s.viewport
	}
	s.loader = media.NewLoader(observer)

	for _, fc := range cfg.Feeds {
		renderer := render.New(urls,
			render.WithMessages(cfg.Messages),
			render.WithTextFormat(render.TextFormat(fc.TextFormat)),
		)
		deps := feed.Deps{Fetcher: fetcher, Document: doc, Renderer: renderer, Loader: s.loader}
		f, err := feed.New(fc.Kind, feed.Options{
			Name:       fc.Name,
			URL:        resolve(cfg.Site.BaseURL, fc.URL),
			Format:     feed.Format(fc.Format),
			Mount:      feed.Mount{Root: fc.Mount, Empty: fc.Empty, More: fc.More},
			PageSize:   fc.PageSize,
			Limit:      fc.Limit,
			Alternates: fc.Alternates,
			Dates:      parser,
		}, deps)
		if err != nil {
			return nil, err
		}
		s.feeds = append(s.feeds, f)
		s.byName[f.Name()] = f
	}

	if cfg.Links != nil {
		s.links = &links.Section{
			URL:     resolve(cfg.Site.BaseURL, cfg.Links.URL),
			Fetcher: fetcher,
			Doc:     doc,
			URLs:    urls,
			Anchors: cfg.Links.Anchors,
			Texts:   cfg.Links.Texts,
		}
	}
	return s, nil
}

// Run initializes every feed and the links section concurrently. Feed failures
// end in their EMPTY or ERROR state; Run only returns context errors.
func (s *Session) Run(ctx context.Context) error {
	ctx = core.WithSessionID(ctx, s.ID)
	ctx = core.WithLogger(ctx, core.LoggerFromContext(ctx).With("session_id", s.ID))
	logger := core.LoggerFromContext(ctx)

	ctx, span := otelx.Start(ctx, otelx.ComponentPage, "page.run", attribute.Int("page.feeds", len(s.feeds)))
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range s.feeds {
		g.Go(func() error {
			f.Init(gctx)
			return nil
		})
	}
	if s.links != nil {
		g.Go(func() error {
			// Links failures keep the static anchors and do not fail the page.
			_, _ = s.links.Apply(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		otelx.Fail(span, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		otelx.Fail(span, err)
		return err
	}

	for _, f := range s.feeds {
		logger.Info("feed ready", "feed", f.Name(), "state", string(f.State()))
	}
	return nil
}

// Feeds returns the controllers in configuration order.
func (s *Session) Feeds() []feed.Feed { return s.feeds }

// Feed returns the controller named name.
func (s *Session) Feed(name string) (feed.Feed, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// LoadMore triggers "load more" on the named feed.
func (s *Session) LoadMore(ctx context.Context, name string) (bool, error) {
	f, ok := s.byName[name]
	if !ok {
		return false, fmt.Errorf("unknown feed %q", name)
	}
	return f.LoadMore(core.WithSessionID(ctx, s.ID)), nil
}

// Scroll moves the simulated viewport. It is a no-op with eager media.
func (s *Session) Scroll(y float64) {
	if s.viewport == nil {
		return
	}
	s.doc.Update(func() { s.viewport.Scroll(y) })
}

// PendingMedia counts deferred images not yet applied.
func (s *Session) PendingMedia() int { return s.loader.Pending() }

func (s *Session) Document() *dom.Document { return s.doc }

// resolve makes a configured resource path absolute against base.
func resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil || b.Scheme == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
