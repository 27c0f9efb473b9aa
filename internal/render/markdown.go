package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// newMarkdownConverter renders CommonMark + GFM. Raw HTML in the source is
// omitted because the unsafe renderer option is never enabled.
func newMarkdownConverter() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

// markdownNodes converts md to a list of block nodes. Comments (where goldmark
// leaves "raw HTML omitted") are dropped and every href/src goes through urls.
func markdownNodes(converter goldmark.Markdown, urls URLPolicy, md string) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(buf.String()), context)
	if err != nil {
		return nil, fmt.Errorf("parse markdown html: %w", err)
	}
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.CommentNode {
			continue
		}
		sanitizeTree(n, urls)
		out = append(out, n)
	}
	return out, nil
}

func sanitizeTree(n *html.Node, urls URLPolicy) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			sanitizeTree(c, urls)
		}
		c = next
	}
	if n.Type != html.ElementNode {
		return
	}
	for i := range n.Attr {
		switch strings.ToLower(n.Attr[i].Key) {
		case "href", "src":
			n.Attr[i].Val = urls.Href(n.Attr[i].Val)
		}
	}
	if n.DataAtom == atom.A {
		n.Attr = append(n.Attr, attr("target", "_blank"), attr("rel", "noopener noreferrer"))
	}
}
