package feed

import (
	"fmt"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dates"
	"github.com/bakkerme/feedboard/internal/normalize"
	"github.com/bakkerme/feedboard/internal/ordering"
	"github.com/bakkerme/feedboard/internal/paginate"
)

// Format is the wire format of a feed resource.
type Format string

const (
	FormatJSON Format = "json"
	FormatRSS  Format = "rss"
)

// Options configure one feed section.
type Options struct {
	Name     string
	URL      string
	Format   Format
	Mount    Mount
	PageSize int
	// Limit caps the event list after sorting. Ignored for press and news.
	Limit int
	// Alternates are extra object keys searched for the record list.
	Alternates []string
	Dates      dates.Parser
}

// New builds the controller matching kind.
func New(kind core.Kind, opts Options, deps Deps) (Feed, error) {
	switch kind {
	case core.KindEvents:
		return NewEvents(opts, deps)
	case core.KindPress:
		return NewPress(opts, deps)
	case core.KindNews:
		return NewNews(opts, deps)
	default:
		return nil, fmt.Errorf("unknown feed kind %q", kind)
	}
}

// NewEvents builds the calendar feed. Events render in one slice: the page
// size defaults to the display limit.
func NewEvents(opts Options, deps Deps) (*Controller[core.Event], error) {
	if opts.Format == FormatRSS {
		return nil, fmt.Errorf("feed %q: events do not support the rss format", opts.Name)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = ordering.EventDisplayLimit
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = limit
	}
	msgs := deps.Renderer.Messages()
	pipeline := Pipeline[core.Event]{
		Kind: core.KindEvents,
		Decode: func(data []byte) ([]core.Event, error) {
			return normalize.Events(data, opts.Alternates...)
		},
		Order: func(records []core.Event) []core.Event {
			return ordering.Events(records, opts.Dates, limit)
		},
		Card: deps.Renderer.Event,
	}
	notices := Notices{Empty: msgs.EventsEmpty, Failed: msgs.EventsFailed, Hint: msgs.EventsRetryHint}
	return NewController(nameOr(opts.Name, "events"), opts.URL, opts.Mount, pageSize, notices, pipeline, deps), nil
}

func NewPress(opts Options, deps Deps) (*Controller[core.PressItem], error) {
	decode, err := pick(opts, func(data []byte) ([]core.PressItem, error) {
		return normalize.PressItems(data, opts.Alternates...)
	}, func(data []byte) ([]core.PressItem, error) {
		return normalize.PressFromFeed(data, opts.Dates.Location)
	})
	if err != nil {
		return nil, err
	}
	msgs := deps.Renderer.Messages()
	pipeline := Pipeline[core.PressItem]{
		Kind:   core.KindPress,
		Decode: decode,
		Order: func(records []core.PressItem) []core.PressItem {
			return ordering.NewestFirst(records, opts.Dates)
		},
		Card: deps.Renderer.Press,
	}
	notices := Notices{Empty: msgs.FeedEmpty, Failed: msgs.FeedFailed}
	return NewController(nameOr(opts.Name, "press"), opts.URL, opts.Mount, pageSizeOr(opts.PageSize), notices, pipeline, deps), nil
}

func NewNews(opts Options, deps Deps) (*Controller[core.NewsItem], error) {
	decode, err := pick(opts, func(data []byte) ([]core.NewsItem, error) {
		return normalize.NewsItems(data, opts.Alternates...)
	}, func(data []byte) ([]core.NewsItem, error) {
		return normalize.NewsFromFeed(data, opts.Dates.Location)
	})
	if err != nil {
		return nil, err
	}
	msgs := deps.Renderer.Messages()
	pipeline := Pipeline[core.NewsItem]{
		Kind:   core.KindNews,
		Decode: decode,
		Order: func(records []core.NewsItem) []core.NewsItem {
			return ordering.NewestFirst(records, opts.Dates)
		},
		Card: deps.Renderer.News,
	}
	notices := Notices{Empty: msgs.FeedEmpty, Failed: msgs.FeedFailed}
	return NewController(nameOr(opts.Name, "news"), opts.URL, opts.Mount, pageSizeOr(opts.PageSize), notices, pipeline, deps), nil
}

func pick[T any](opts Options, fromJSON, fromRSS func([]byte) ([]T, error)) (func([]byte) ([]T, error), error) {
	switch opts.Format {
	case "", FormatJSON:
		return fromJSON, nil
	case FormatRSS:
		return fromRSS, nil
	default:
		return nil, fmt.Errorf("feed %q: unknown format %q", opts.Name, opts.Format)
	}
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func pageSizeOr(n int) int {
	if n <= 0 {
		return paginate.DefaultPageSize
	}
	return n
}
