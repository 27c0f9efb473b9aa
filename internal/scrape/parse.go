// Package scrape builds the upcoming council session list from the municipal
// session information system.
package scrape

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DetailSelector matches links to single session pages in the list view.
const DetailSelector = "a[href*='si0057.asp']"

var (
	datePattern     = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)
	clockPattern    = regexp.MustCompile(`\b(\d{2}:\d{2})(?:-(\d{2}:\d{2}))?\s*Uhr`)
	locationPattern = regexp.MustCompile(`(Rathaus.*|Bürgersaal.*|Bahnhof.*|Schloss.*|^\d{5}.*)`)
)

// Clock is the start and optional end of a session.
type Clock struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Session is one council meeting as written to termine.json.
type Session struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      Clock  `json:"time"`
	Location  string `json:"location"`
	DetailURL string `json:"detail_url"`
}

// ParseList extracts every linked session from the list page. Relative detail
// links resolve against base.
func ParseList(page []byte, base string) ([]Session, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse session list: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var out []Session
	doc.Find(DetailSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		block := blockText(a.Parent())

		s := Session{
			Title:     collapse(a.Text()),
			DetailURL: resolve(baseURL, href),
		}
		if m := datePattern.FindStringSubmatch(block); m != nil {
			s.Date = m[1]
		}
		if m := clockPattern.FindStringSubmatch(block); m != nil {
			s.Time = Clock{Start: m[1], End: m[2]}
		}
		if m := locationPattern.FindStringSubmatch(block); m != nil {
			s.Location = m[1]
		}
		out = append(out, s)
	})
	return out, nil
}

// blockText joins the trimmed text nodes below sel with single spaces.
func blockText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapse(strings.Join(parts, " "))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
