// Package media swaps deferred image references into card media blocks once
// they come close to the viewport.
package media

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/render"
)

// Observer reports when a node becomes visible. Implementations call onVisible
// at most once per Observe and never after Unobserve.
type Observer interface {
	Observe(n *html.Node, onVisible func())
	Unobserve(n *html.Node)
}

// State is the lifecycle of one placeholder.
type State int

const (
	Unknown State = iota
	Pending
	Triggered
	Loaded
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Triggered:
		return "loading-triggered"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Loader tracks placeholders and applies each deferred reference exactly once.
// A nil Observer applies every reference as soon as it is registered.
type Loader struct {
	observer Observer

	mu     sync.Mutex
	states map[*html.Node]State
}

func NewLoader(observer Observer) *Loader {
	return &Loader{observer: observer, states: make(map[*html.Node]State)}
}

// Register finds every pending placeholder below root and hands it to the
// observer. Nodes seen before are skipped. It returns the number of new
// placeholders.
func (l *Loader) Register(root *html.Node) int {
	placeholders := dom.FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			dom.HasClass(n, render.ClassMedia) &&
			dom.HasAttr(n, render.AttrDeferredImage)
	})

	var fresh []*html.Node
	l.mu.Lock()
	for _, n := range placeholders {
		if _, seen := l.states[n]; seen {
			continue
		}
		l.states[n] = Pending
		fresh = append(fresh, n)
	}
	l.mu.Unlock()

	for _, n := range fresh {
		if l.observer == nil {
			l.trigger(n)
			continue
		}
		l.observer.Observe(n, func() { l.trigger(n) })
	}
	return len(fresh)
}

// Release forgets every placeholder below root and stops watching the ones
// still pending. Call it before root's children are discarded. It returns the
// number of placeholders forgotten.
func (l *Loader) Release(root *html.Node) int {
	blocks := dom.FindAll(root, dom.ElementsWithClass(render.ClassMedia))

	var watched []*html.Node
	released := 0
	l.mu.Lock()
	for _, n := range blocks {
		state, ok := l.states[n]
		if !ok {
			continue
		}
		if state == Pending {
			watched = append(watched, n)
		}
		delete(l.states, n)
		released++
	}
	l.mu.Unlock()

	if l.observer != nil {
		for _, n := range watched {
			l.observer.Unobserve(n)
		}
	}
	return released
}

// State reports where n is in its lifecycle.
func (l *Loader) State(n *html.Node) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[n]
}

// Pending counts placeholders still waiting for visibility.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, s := range l.states {
		if s == Pending {
			count++
		}
	}
	return count
}

func (l *Loader) trigger(n *html.Node) {
	l.mu.Lock()
	if l.states[n] != Pending {
		l.mu.Unlock()
		return
	}
	l.states[n] = Triggered
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.Unobserve(n)
	}
	src := dom.AttrValue(n, render.AttrDeferredImage)
	dom.RemoveAttr(n, render.AttrDeferredImage)
	apply(n, src)

	l.mu.Lock()
	l.states[n] = Loaded
	l.mu.Unlock()
}

func apply(n *html.Node, src string) {
	dom.SetStyle(n, "background-image", "url('"+cssURL(src)+"')")
	dom.RemoveClass(n, render.ClassLoading)
	dom.AddClass(n, render.ClassLoaded)
}

var cssURLReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\a `, "\r", `\d `)

// cssURL escapes src for a single-quoted CSS url().
func cssURL(src string) string {
	return cssURLReplacer.Replace(src)
}
