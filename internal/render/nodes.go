package render

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// attr is shorthand for one attribute. Values are stored raw and escaped by html.Render.
func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func attrs(list ...html.Attribute) []html.Attribute { return list }

// el builds an element node. nil children are skipped.
func el(tag string, attributes []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attributes,
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// text is the only way feed-supplied strings enter a fragment.
func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
