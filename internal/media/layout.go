package media

import (
	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/render"
)

// FlowLayout stacks media blocks below Offset in document order, each
// ItemHeight tall. It stands in for a real layout engine in previews.
type FlowLayout struct {
	Root       *html.Node
	Offset     float64
	ItemHeight float64
}

func (f FlowLayout) Bounds(n *html.Node) (Rect, bool) {
	if f.Root == nil || n == nil {
		return Rect{}, false
	}
	blocks := dom.FindAll(f.Root, dom.ElementsWithClass(render.ClassMedia))
	for i, b := range blocks {
		if b == n {
			return Rect{Top: f.Offset + float64(i)*f.ItemHeight, Height: f.ItemHeight}, true
		}
	}
	return Rect{}, false
}
