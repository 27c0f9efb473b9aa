// Package feed drives one feed section of a page from fetch to rendered cards.
package feed

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/media"
	"github.com/bakkerme/feedboard/internal/normalize"
	"github.com/bakkerme/feedboard/internal/observability/otelx"
	"github.com/bakkerme/feedboard/internal/paginate"
	"github.com/bakkerme/feedboard/internal/render"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

// Feed is one mounted feed section.
type Feed interface {
	Name() string
	Kind() core.Kind
	State() core.FeedState
	// Init fetches, orders and renders the first slice. Failures end in the
	// EMPTY or ERROR state and are logged, never returned.
	Init(ctx context.Context)
	// LoadMore renders the next slice and reports whether anything was added.
	LoadMore(ctx context.Context) bool
}

// Mount names the host nodes a feed binds to. Only Root is required.
type Mount struct {
	Root  string
	Empty string
	More  string
}

// Deps are the collaborators shared by every feed of a page session.
type Deps struct {
	Fetcher  feedjson.Fetcher
	Document *dom.Document
	Renderer *render.Renderer
	Loader   *media.Loader
}

// Pipeline is the per-kind part of a controller.
type Pipeline[T any] struct {
	Kind   core.Kind
	Decode func(data []byte) ([]T, error)
	Order  func(records []T) []T
	Card   func(record T) *html.Node
}

// Notices are the texts shown when a feed ends up EMPTY or ERROR.
type Notices struct {
	Empty  string
	Failed string
	Hint   string
}

// Controller holds the records, cursor and state of one feed instance.
type Controller[T any] struct {
	name     string
	url      string
	mount    Mount
	pageSize int
	notices  Notices
	pipeline Pipeline[T]
	deps     Deps

	// run serializes Init and LoadMore on this instance.
	run sync.Mutex

	mu     sync.RWMutex
	state  core.FeedState
	cursor *paginate.Cursor[T]
	root   *html.Node
}

func NewController[T any](name, url string, mount Mount, pageSize int, notices Notices, pipeline Pipeline[T], deps Deps) *Controller[T] {
	return &Controller[T]{
		name:     name,
		url:      url,
		mount:    mount,
		pageSize: pageSize,
		notices:  notices,
		pipeline: pipeline,
		deps:     deps,
		state:    core.FeedStateInit,
	}
}

func (c *Controller[T]) Name() string    { return c.name }
func (c *Controller[T]) Kind() core.Kind { return c.pipeline.Kind }

func (c *Controller[T]) State() core.FeedState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Shown is the number of records rendered so far.
func (c *Controller[T]) Shown() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cursor == nil {
		return 0
	}
	return c.cursor.Position()
}

func (c *Controller[T]) setState(s core.FeedState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller[T]) Init(ctx context.Context) {
	c.run.Lock()
	defer c.run.Unlock()

	ctx = core.WithFeed(ctx, c.name)
	logger := core.LoggerFromContext(ctx).With("feed", c.name, "kind", string(c.pipeline.Kind))
	ctx = core.WithLogger(ctx, logger)

	ctx, span := otelx.Start(ctx, otelx.ComponentFeed, "feed.load",
		attribute.String("feed.kind", string(c.pipeline.Kind)))
	defer span.End()

	var root *html.Node
	c.deps.Document.Update(func() { root = c.deps.Document.ByID(c.mount.Root) })
	if root == nil {
		logger.Debug("mount node absent, feed not initialized", "mount", c.mount.Root)
		return
	}
	c.mu.Lock()
	c.root = root
	c.state = core.FeedStateLoading
	c.cursor = nil
	c.mu.Unlock()

	data, err := c.deps.Fetcher.Fetch(ctx, c.url)
	if err != nil {
		c.fail(ctx, span, "fetch", err)
		return
	}

	records, err := c.pipeline.Decode(data)
	switch {
	case errors.Is(err, normalize.ErrNoRecordList):
		logger.Warn("payload has no record list", "error", err)
		c.empty(ctx)
		return
	case err != nil:
		c.fail(ctx, span, "decode", err)
		return
	}
	if c.pipeline.Order != nil {
		records = c.pipeline.Order(records)
	}
	span.SetAttributes(attribute.Int("feed.records", len(records)))
	if len(records) == 0 {
		c.empty(ctx)
		return
	}

	cursor := paginate.New(records, c.pageSize)
	c.mu.Lock()
	c.cursor = cursor
	c.state = core.FeedStatePopulated
	c.mu.Unlock()

	c.deps.Document.Update(func() { c.clear(root) })
	c.renderSlice(ctx)
	logger.Info("feed populated", "records", len(records), "shown", c.Shown())
}

func (c *Controller[T]) LoadMore(ctx context.Context) bool {
	c.run.Lock()
	defer c.run.Unlock()
	if c.State() != core.FeedStatePopulated {
		return false
	}
	ctx = core.WithFeed(ctx, c.name)
	return c.renderSlice(ctx)
}

// renderSlice moves the next page of cards into the root in one mutation and
// hands their media blocks to the loader.
func (c *Controller[T]) renderSlice(ctx context.Context) bool {
	_, span := otelx.Start(ctx, otelx.ComponentFeed, "feed.render_slice")
	defer span.End()

	c.mu.Lock()
	slice, exhausted := c.cursor.Next()
	root := c.root
	c.mu.Unlock()
	span.SetAttributes(attribute.Int("feed.slice", len(slice)), attribute.Bool("feed.exhausted", exhausted))

	doc := c.deps.Document
	doc.Update(func() {
		more := doc.ByID(c.mount.More)
		if len(slice) == 0 {
			if more != nil {
				dom.Hide(more)
			}
			return
		}
		container := render.Batch(slice, c.pipeline.Card)
		doc.MoveChildren(root, container)
		if c.deps.Loader != nil {
			c.deps.Loader.Register(root)
		}
		if more != nil {
			if exhausted {
				dom.Hide(more)
			} else {
				dom.Show(more, "inline-block")
			}
		}
		if hint := doc.ByID(c.mount.Empty); hint != nil {
			dom.Hide(hint)
		}
	})
	return len(slice) > 0
}

func (c *Controller[T]) fail(ctx context.Context, span trace.Span, stage string, err error) {
	otelx.Fail(span, err)
	core.LoggerFromContext(ctx).Error("feed load failed", "stage", stage, "error", err)
	c.setState(core.FeedStateError)
	c.notice(c.notices.Failed)
}

func (c *Controller[T]) empty(ctx context.Context) {
	core.LoggerFromContext(ctx).Info("feed empty")
	c.setState(core.FeedStateEmpty)
	c.notice(c.notices.Empty)
}

// notice shows msg in the empty hint when the page has one, otherwise as a
// status card inside the root. The load-more trigger is hidden either way.
func (c *Controller[T]) notice(msg string) {
	doc := c.deps.Document
	doc.Update(func() {
		if more := doc.ByID(c.mount.More); more != nil {
			dom.Hide(more)
		}
		if hint := doc.ByID(c.mount.Empty); hint != nil {
			doc.SetText(hint, msg)
			dom.Show(hint, "block")
			return
		}
		c.clear(c.root, c.deps.Renderer.Message(msg, c.notices.Hint))
	})
}

// clear replaces the root's children and drops the loader's hold on the
// placeholders being removed. Callers hold the document lock.
func (c *Controller[T]) clear(root *html.Node, children ...*html.Node) {
	if c.deps.Loader != nil {
		c.deps.Loader.Release(root)
	}
	c.deps.Document.ReplaceChildren(root, children...)
}
