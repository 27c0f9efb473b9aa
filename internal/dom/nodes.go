package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Find returns the first node in document order below (and including) n matching pred.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node below (and including) n matching pred, in document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ElementsWithClass matches elements carrying class.
func ElementsWithClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, class)
	}
}

// Text concatenates all text below n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

func AttrValue(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(AttrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if n == nil || HasClass(n, class) {
		return
	}
	classes := append(strings.Fields(AttrValue(n, "class")), class)
	SetAttr(n, "class", strings.Join(classes, " "))
}

func RemoveClass(n *html.Node, class string) {
	if n == nil {
		return
	}
	kept := make([]string, 0, 2)
	for _, c := range strings.Fields(AttrValue(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// SetStyle sets one inline style property, preserving the others.
// An empty value removes the property.
func SetStyle(n *html.Node, property, value string) {
	if n == nil {
		return
	}
	property = strings.ToLower(strings.TrimSpace(property))
	var decls []string
	for _, decl := range strings.Split(AttrValue(n, "style"), ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.ToLower(strings.TrimSpace(name)) == property {
			continue
		}
		decls = append(decls, decl)
	}
	if value != "" {
		decls = append(decls, property+": "+value)
	}
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(decls, "; "))
}

// Style returns the value of an inline style property.
func Style(n *html.Node, property string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	for _, decl := range strings.Split(AttrValue(n, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.ToLower(strings.TrimSpace(name)) == property {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Show and Hide toggle the inline display property the way the page script does.
func Show(n *html.Node, display string) { SetStyle(n, "display", display) }
func Hide(n *html.Node)                 { SetStyle(n, "display", "none") }
