package media

import (
	"slices"
	"sync"

	"golang.org/x/net/html"
)

const (
	DefaultRootMargin = 200
	DefaultThreshold  = 0.1
)

// Rect is the vertical extent of a node in page coordinates.
type Rect struct {
	Top    float64
	Height float64
}

// Geometry answers where a node sits on the page.
type Geometry interface {
	Bounds(n *html.Node) (Rect, bool)
}

// ViewportObserver fires callbacks for nodes whose visible share of the
// viewport, grown by RootMargin on both edges, reaches Threshold.
type ViewportObserver struct {
	geometry   Geometry
	height     float64
	rootMargin float64
	threshold  float64

	mu       sync.Mutex
	scrollY  float64
	watching map[*html.Node]func()
	order    []*html.Node
}

type ViewportOption func(*ViewportObserver)

func WithRootMargin(px float64) ViewportOption {
	return func(o *ViewportObserver) { o.rootMargin = px }
}

func WithThreshold(ratio float64) ViewportOption {
	return func(o *ViewportObserver) { o.threshold = ratio }
}

func NewViewportObserver(geometry Geometry, viewportHeight float64, opts ...ViewportOption) *ViewportObserver {
	o := &ViewportObserver{
		geometry:   geometry,
		height:     viewportHeight,
		rootMargin: DefaultRootMargin,
		threshold:  DefaultThreshold,
		watching:   make(map[*html.Node]func()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observe registers n and fires immediately when it already intersects.
func (o *ViewportObserver) Observe(n *html.Node, onVisible func()) {
	o.mu.Lock()
	if _, ok := o.watching[n]; !ok {
		o.order = append(o.order, n)
	}
	o.watching[n] = onVisible
	o.mu.Unlock()
	o.flush()
}

func (o *ViewportObserver) Unobserve(n *html.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drop(n)
}

// Scroll moves the viewport top to y and fires callbacks for nodes now in range.
func (o *ViewportObserver) Scroll(y float64) {
	o.mu.Lock()
	o.scrollY = y
	o.mu.Unlock()
	o.flush()
}

// Observed reports how many nodes are still being watched.
func (o *ViewportObserver) Observed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.watching)
}

// flush collects due callbacks under the lock and runs them without it, so a
// callback may Unobserve.
func (o *ViewportObserver) flush() {
	o.mu.Lock()
	var due []func()
	// drop shifts o.order, so walk a copy.
	for _, n := range slices.Clone(o.order) {
		cb, ok := o.watching[n]
		if !ok || !o.intersects(n) {
			continue
		}
		o.drop(n)
		due = append(due, cb)
	}
	o.mu.Unlock()

	for _, cb := range due {
		cb()
	}
}

func (o *ViewportObserver) drop(n *html.Node) {
	if _, ok := o.watching[n]; !ok {
		return
	}
	delete(o.watching, n)
	for i, m := range o.order {
		if m == n {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

func (o *ViewportObserver) intersects(n *html.Node) bool {
	if o.geometry == nil {
		return false
	}
	r, ok := o.geometry.Bounds(n)
	if !ok {
		return false
	}
	top := o.scrollY - o.rootMargin
	bottom := o.scrollY + o.height + o.rootMargin
	overlap := min(bottom, r.Top+r.Height) - max(top, r.Top)
	if r.Height <= 0 {
		return r.Top >= top && r.Top <= bottom
	}
	if overlap <= 0 {
		return false
	}
	return overlap/r.Height >= o.threshold
}
