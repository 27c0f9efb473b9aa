package normalize

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/bakkerme/feedboard/internal/core"
)

// ExcerptRunes bounds excerpts derived from RSS descriptions.
const ExcerptRunes = 280

// ParseFeed parses an RSS, Atom or JSON Feed document. Parse failures wrap ErrDecode.
func ParseFeed(data []byte) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return feed, nil
}

// PressFromFeed maps syndication entries to press records; the feed title is the source.
func PressFromFeed(data []byte, loc *time.Location) ([]core.PressItem, error) {
	feed, err := ParseFeed(data)
	if err != nil {
		return nil, err
	}
	out := make([]core.PressItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		out = append(out, core.PressItem{
			Title:   strings.TrimSpace(item.Title),
			URL:     strings.TrimSpace(item.Link),
			Source:  strings.TrimSpace(feed.Title),
			Date:    entryDate(item, loc),
			Image:   entryImage(item),
			Excerpt: PlainExcerpt(item.Description, ExcerptRunes),
		})
	}
	return out, nil
}

// NewsFromFeed maps syndication entries to first-party news records.
func NewsFromFeed(data []byte, loc *time.Location) ([]core.NewsItem, error) {
	feed, err := ParseFeed(data)
	if err != nil {
		return nil, err
	}
	out := make([]core.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		text := item.Description
		if strings.TrimSpace(text) == "" {
			text = item.Content
		}
		out = append(out, core.NewsItem{
			Title: strings.TrimSpace(item.Title),
			URL:   strings.TrimSpace(item.Link),
			Date:  entryDate(item, loc),
			Image: entryImage(item),
			Text:  PlainExcerpt(text, ExcerptRunes),
		})
	}
	return out, nil
}

// entryDate formats the entry timestamp as YYYY-MM-DD; unknown dates stay empty
// so that the record sorts last instead of being stamped with the fetch time.
func entryDate(item *gofeed.Item, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.In(loc).Format("2006-01-02")
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.In(loc).Format("2006-01-02")
	}
	return ""
}

func entryImage(item *gofeed.Item) string {
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

// PlainExcerpt strips markup, collapses whitespace and truncates to max runes.
func PlainExcerpt(htmlText string, max int) string {
	text := htmlText
	if strings.Contains(htmlText, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
		if err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if max > 0 && utf8.RuneCountInString(text) > max {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:max])) + "…"
	}
	return text
}
