package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
)

func renderString(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, n))
	return buf.String()
}

func newTestRenderer(opts ...Option) *Renderer {
	return New(NewURLPolicy("https://elternbeirat.example"), opts...)
}

func TestEventCard(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.Event(core.Event{
		Title:    "Hauptausschuss",
		Date:     "05.03.2024",
		Start:    "18:00",
		End:      "20:30",
		Location: "Rathaus, Saal 1",
		URL:      "https://sessionnet.example/si0057.asp?__ksinr=1",
	}))

	assert.Contains(t, out, `<article class="event" role="listitem">`)
	assert.Contains(t, out, `<h3 class="title">Hauptausschuss</h3>`)
	assert.Contains(t, out, "05.03.2024 · 18:00–20:30 Uhr · Rathaus, Saal 1")
	assert.Contains(t, out, `href="https://sessionnet.example/si0057.asp?__ksinr=1"`)
	assert.Contains(t, out, `rel="noopener noreferrer"`)
	assert.Contains(t, out, ">Details</a>")
}

func TestEventCardFallbacks(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.Event(core.Event{Date: "05.03.2024", Start: "18:00"}))

	assert.Contains(t, out, `<h3 class="title">Sitzung</h3>`)
	assert.Contains(t, out, "05.03.2024 · 18:00 Uhr</p>")
	assert.NotContains(t, out, "<a ")
}

func TestPressCardEscapesText(t *testing.T) {
	r := newTestRenderer()
	n := r.Press(core.PressItem{
		Title:   `<script>alert("x")</script>`,
		URL:     "https://zeitung.example/a",
		Source:  "MAZ",
		Date:    "2024-03-01",
		Excerpt: "Tom & Jerry",
	})
	out := renderString(t, n)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.Contains(t, out, "Tom &amp; Jerry")
	assert.Contains(t, out, "MAZ • 2024-03-01")
	assert.Contains(t, out, `aria-label="Zum Artikel: &lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"`)
	assert.Len(t, dom.FindAll(n, func(c *html.Node) bool { return c.Data == "script" }), 0)
}

func TestPressCardRejectsUnsafeURLs(t *testing.T) {
	r := newTestRenderer()
	n := r.Press(core.PressItem{Title: "t", URL: "javascript:alert(1)", Image: "data:image/png;base64,AAAA"})
	out := renderString(t, n)

	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `href="#"`)

	media := dom.FindAll(n, dom.ElementsWithClass(ClassMedia))
	require.Len(t, media, 1)
	assert.False(t, dom.HasClass(media[0], ClassLoading))
	assert.False(t, dom.HasAttr(media[0], AttrDeferredImage))
}

func TestPressCardDeferredImage(t *testing.T) {
	r := newTestRenderer()
	n := r.Press(core.PressItem{Title: "t", URL: "/presse/a", Image: "/img/a.jpg"})

	media := dom.FindAll(n, dom.ElementsWithClass(ClassMedia))
	require.Len(t, media, 1)
	assert.True(t, dom.HasClass(media[0], ClassLoading))
	assert.Equal(t, "https://elternbeirat.example/img/a.jpg", dom.AttrValue(media[0], AttrDeferredImage))
	assert.Contains(t, renderString(t, n), `href="https://elternbeirat.example/presse/a"`)
}

func TestPressCardEmptyMeta(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.Press(core.PressItem{Title: "t"}))

	assert.Contains(t, out, "<p class=\"news-meta\">\u00a0</p>")
	assert.Contains(t, out, "Kurzinfo folgt.")
	assert.Contains(t, out, "<h3 class=\"news-title\"><a href=\"#\"")
}

func TestNewsCardWithoutURL(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.News(core.NewsItem{Text: "Sitzung am Montag", Date: "2024-03-02"}))

	assert.Contains(t, out, `<h3 class="news-title">Update</h3>`)
	assert.NotContains(t, out, "Weiterlesen")
	assert.NotContains(t, out, "<a ")
	assert.Contains(t, out, "Sitzung am Montag")
}

func TestNewsCardWithURL(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.News(core.NewsItem{Title: "Neu", URL: "https://elternbeirat.example/n/1"}))

	assert.Contains(t, out, `<a href="https://elternbeirat.example/n/1" target="_blank" rel="noopener noreferrer">Neu</a>`)
	assert.Contains(t, out, ">Weiterlesen</a>")
}

func TestNewsCardMarkdown(t *testing.T) {
	r := newTestRenderer(WithTextFormat(TextMarkdown))
	out := renderString(t, r.News(core.NewsItem{
		Title: "md",
		Text:  "**fett** und [link](javascript:alert(1)) <img src=x onerror=alert(1)>",
	}))

	assert.Contains(t, out, "<strong>fett</strong>")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, `<div class="news-excerpt">`)
}

func TestMessagesOverride(t *testing.T) {
	r := newTestRenderer(WithMessages(core.Messages{EventTitle: "Session"}))

	out := renderString(t, r.Event(core.Event{}))
	assert.Contains(t, out, ">Session</h3>")
	assert.Equal(t, "Uhr", r.Messages().ClockSuffix)
}

func TestBatch(t *testing.T) {
	r := newTestRenderer()
	container := Batch([]core.NewsItem{{Title: "a"}, {Title: "b"}, {Title: "c"}}, r.News)

	var titles []string
	for _, h := range dom.FindAll(container, dom.ElementsWithClass("news-title")) {
		titles = append(titles, dom.Text(h))
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles)
	assert.Nil(t, container.Parent)
}

func TestMessageCard(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.Message("Leer", "Bitte später erneut prüfen."))
	assert.True(t, strings.HasPrefix(out, `<div class="event"><p class="title">Leer</p>`))
}

func TestURLPolicy(t *testing.T) {
	p := NewURLPolicy("https://site.example/base/")
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://a.example/x", "https://a.example/x", true},
		{"HTTP://a.example", "http://a.example", true},
		{"/abs", "https://site.example/abs", true},
		{"rel", "https://site.example/base/rel", true},
		{"  ", "", false},
		{"javascript:alert(1)", "", false},
		{"mailto:a@b.example", "", false},
		{"data:text/html,x", "", false},
		{"https://", "", false},
	}
	for _, tc := range cases {
		got, ok := p.Allowed(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	assert.Equal(t, NoopHref, URLPolicy{}.Href("/relative"))
}

func TestMessageCardWithoutHint(t *testing.T) {
	r := newTestRenderer()
	out := renderString(t, r.Message("Leer", ""))
	assert.Equal(t, `<div class="event"><p class="title">Leer</p></div>`, out)
}
