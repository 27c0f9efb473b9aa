// Package dom is the host document a page session mounts feeds into.
//
// It wraps an x/net/html tree and counts structural mutations of the live tree so
// callers can verify that a batch of cards lands in a single insertion.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed host page.
//
// The node tree is not safe for concurrent use. Feeds that run in parallel
// funnel every tree change through Update.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	mutations int
}

// Parse reads a complete HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse host document: %w", err)
	}
	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return Find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && AttrValue(n, "id") == id
	})
}

// Update runs fn with exclusive access to the tree. fn must not call Update,
// Render or String.
func (d *Document) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Mutations is the number of structural changes applied to the live tree.
func (d *Document) Mutations() int { return d.mutations }

// MoveChildren detaches every child of container and appends them to parent in
// one operation. container must not be part of the live tree.
func (d *Document) MoveChildren(parent, container *html.Node) {
	if parent == nil || container == nil || container.FirstChild == nil {
		return
	}
	for c := container.FirstChild; c != nil; {
		next := c.NextSibling
		container.RemoveChild(c)
		parent.AppendChild(c)
		c = next
	}
	d.mutations++
}

// ReplaceChildren clears node and appends children, counted as one mutation.
func (d *Document) ReplaceChildren(node *html.Node, children ...*html.Node) {
	if node == nil {
		return
	}
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	for _, c := range children {
		if c != nil {
			node.AppendChild(c)
		}
	}
	d.mutations++
}

// SetText replaces the content of node with a single text node.
func (d *Document) SetText(node *html.Node, text string) {
	d.ReplaceChildren(node, &html.Node{Type: html.TextNode, Data: text})
}

// Render serializes the whole document. Text and attribute values are escaped here.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// NewContainer returns a detached <div> used to assemble a batch off-tree.
func NewContainer() *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
}

// RenderNode serializes a single node.
func RenderNode(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// RenderChildren serializes the children of n without n itself.
func RenderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}
