// Package render maps canonical records to card fragments.
//
// A card is an x/net/html subtree. Feed text only ever enters through text nodes
// and attribute values, which html.Render escapes when the page is serialized;
// every link and image URL passes the URLPolicy first.
package render

import (
	"strings"

	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
)

// TextFormat selects how news text is rendered.
type TextFormat string

const (
	TextPlain    TextFormat = "plain"
	TextMarkdown TextFormat = "markdown"
)

const (
	// ClassMedia marks the image block of a card.
	ClassMedia = "news-media"
	// ClassLoading marks a media block still waiting for its deferred image.
	ClassLoading = "is-loading"
	// ClassLoaded marks a media block whose image has been applied.
	ClassLoaded = "is-loaded"
	// AttrDeferredImage carries the pending image URL of a placeholder.
	AttrDeferredImage = "data-bg"
)

// Renderer builds cards for all three feeds.
type Renderer struct {
	urls       URLPolicy
	messages   core.Messages
	textFormat TextFormat
	markdown   goldmark.Markdown
}

// Option customizes a Renderer.
type Option func(*Renderer)

func WithMessages(m core.Messages) Option {
	return func(r *Renderer) { r.messages = m.WithDefaults() }
}

func WithTextFormat(f TextFormat) Option {
	return func(r *Renderer) { r.textFormat = f }
}

func New(urls URLPolicy, opts ...Option) *Renderer {
	r := &Renderer{
		urls:       urls,
		messages:   core.DefaultMessages(),
		textFormat: TextPlain,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.textFormat == TextMarkdown {
		r.markdown = newMarkdownConverter()
	}
	return r
}

func (r *Renderer) URLs() URLPolicy         { return r.urls }
func (r *Renderer) Messages() core.Messages { return r.messages }

// Batch renders every record into one detached container, ready to be moved
// into the live tree with a single dom.Document.MoveChildren call.
func Batch[T any](records []T, card func(T) *html.Node) *html.Node {
	container := dom.NewContainer()
	for _, rec := range records {
		if n := card(rec); n != nil {
			container.AppendChild(n)
		}
	}
	return container
}

// Message renders the event-style status card used when a list has nothing to
// show. An empty hint omits the second line.
func (r *Renderer) Message(title, hint string) *html.Node {
	var sub *html.Node
	if hint != "" {
		sub = el("p", attrs(attr("class", "sub")), text(hint))
	}
	return el("div", attrs(attr("class", "event")),
		el("p", attrs(attr("class", "title")), text(title)),
		sub,
	)
}

func (r *Renderer) Event(e core.Event) *html.Node {
	title := lo.Ternary(e.Title != "", e.Title, r.messages.EventTitle)
	meta := strings.Join(lo.Compact([]string{e.Date, r.clock(e.Start, e.End), e.Location}), " · ")

	var link *html.Node
	if e.URL != "" {
		link = r.externalLink(r.urls.Href(e.URL), r.messages.EventDetails)
	}
	return el("article", attrs(attr("class", "event"), attr("role", "listitem")),
		el("h3", attrs(attr("class", "title")), text(title)),
		el("p", attrs(attr("class", "sub")), text(meta)),
		el("div", attrs(attr("class", "links")), link),
	)
}

func (r *Renderer) clock(start, end string) string {
	switch {
	case start == "":
		return ""
	case end == "":
		return start + " " + r.messages.ClockSuffix
	default:
		return start + "–" + end + " " + r.messages.ClockSuffix
	}
}

func (r *Renderer) Press(p core.PressItem) *html.Node {
	title := lo.Ternary(p.Title != "", p.Title, r.messages.PressTitle)
	href := r.urls.Href(p.URL)

	linkAttrs := func(extra ...html.Attribute) []html.Attribute {
		return append(attrs(attr("href", href), attr("target", "_blank"), attr("rel", "noopener noreferrer")), extra...)
	}
	return el("article", attrs(attr("class", "news-card"), attr("role", "listitem")),
		el("a", linkAttrs(attr("aria-label", r.messages.PressAriaPrefix+title)), r.media(p.Image)),
		el("div", attrs(attr("class", "news-body")),
			el("h3", attrs(attr("class", "news-title")), el("a", linkAttrs(), text(title))),
			r.excerpt(p.Excerpt, TextPlain),
			r.meta(p.Source, p.Date),
			el("div", attrs(attr("class", "news-actions")), el("a", linkAttrs(), text(r.messages.PressAction))),
		),
	)
}

func (r *Renderer) News(n core.NewsItem) *html.Node {
	title := lo.Ternary(n.Title != "", n.Title, r.messages.NewsTitle)
	href, linked := r.urls.Allowed(n.URL)

	titleNode := text(title)
	var action *html.Node
	if linked {
		titleNode = r.externalLink(href, title)
		action = el("div", attrs(attr("class", "news-actions")), r.externalLink(href, r.messages.NewsAction))
	}
	return el("article", attrs(attr("class", "news-card"), attr("role", "listitem")),
		r.media(n.Image),
		el("div", attrs(attr("class", "news-body")),
			el("h3", attrs(attr("class", "news-title")), titleNode),
			r.excerpt(n.Text, r.textFormat),
			r.meta(n.Date),
			action,
		),
	)
}

// media renders the image block. Only an allowed image URL becomes a deferred
// reference; anything else gets the static placeholder visual.
func (r *Renderer) media(image string) *html.Node {
	src, ok := r.urls.Allowed(image)
	if !ok {
		return el("div", attrs(attr("class", ClassMedia)))
	}
	return el("div", attrs(attr("class", ClassMedia+" "+ClassLoading), attr(AttrDeferredImage, src)))
}

func (r *Renderer) excerpt(body string, format TextFormat) *html.Node {
	if body == "" {
		return el("p", attrs(attr("class", "news-excerpt")), text(r.messages.ExcerptFallback))
	}
	if format == TextMarkdown && r.markdown != nil {
		// A conversion error falls through to the plain paragraph.
		if nodes, err := markdownNodes(r.markdown, r.urls, body); err == nil && len(nodes) > 0 {
			return el("div", attrs(attr("class", "news-excerpt")), nodes...)
		}
	}
	return el("p", attrs(attr("class", "news-excerpt")), text(body))
}

// meta joins the non-empty parts with a bullet; an empty line keeps its height
// with a no-break space.
func (r *Renderer) meta(parts ...string) *html.Node {
	line := strings.Join(lo.Compact(parts), " • ")
	if line == "" {
		line = "\u00a0"
	}
	return el("p", attrs(attr("class", "news-meta")), text(line))
}

func (r *Renderer) externalLink(href, label string) *html.Node {
	return el("a", attrs(attr("href", href), attr("target", "_blank"), attr("rel", "noopener noreferrer")), text(label))
}
