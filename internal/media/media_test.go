package media

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/render"
)

// countingObserver records calls and lets the test fire callbacks by hand.
type countingObserver struct {
	callbacks  map[*html.Node]func()
	unobserved []*html.Node
}

func newCountingObserver() *countingObserver {
	return &countingObserver{callbacks: make(map[*html.Node]func())}
}

func (c *countingObserver) Observe(n *html.Node, cb func()) { c.callbacks[n] = cb }
func (c *countingObserver) Unobserve(n *html.Node)          { c.unobserved = append(c.unobserved, n) }

func cards(t *testing.T, images ...string) *html.Node {
	t.Helper()
	r := render.New(render.NewURLPolicy("https://site.example"))
	items := make([]core.PressItem, 0, len(images))
	for _, img := range images {
		items = append(items, core.PressItem{Title: "t", Image: img})
	}
	return render.Batch(items, r.Press)
}

func mediaBlocks(root *html.Node) []*html.Node {
	return dom.FindAll(root, dom.ElementsWithClass(render.ClassMedia))
}

func TestLoaderWithoutObserverAppliesEagerly(t *testing.T) {
	root := cards(t, "https://img.example/a.jpg", "", "https://img.example/b.jpg")
	l := NewLoader(nil)

	assert.Equal(t, 2, l.Register(root))
	assert.Equal(t, 0, l.Register(root), "second registration is a no-op")

	blocks := mediaBlocks(root)
	require.Len(t, blocks, 3)
	assert.Equal(t, Loaded, l.State(blocks[0]))
	assert.Equal(t, Unknown, l.State(blocks[1]))
	assert.Equal(t, "url('https://img.example/a.jpg')", dom.Style(blocks[0], "background-image"))
	assert.True(t, dom.HasClass(blocks[0], render.ClassLoaded))
	assert.False(t, dom.HasClass(blocks[0], render.ClassLoading))
	assert.False(t, dom.HasAttr(blocks[0], render.AttrDeferredImage))
	assert.False(t, dom.HasAttr(blocks[1], "style"))
	assert.Equal(t, 0, l.Pending())
}

func TestLoaderConsumesReferenceOnce(t *testing.T) {
	root := cards(t, "https://img.example/a.jpg")
	obs := newCountingObserver()
	l := NewLoader(obs)
	require.Equal(t, 1, l.Register(root))

	block := mediaBlocks(root)[0]
	assert.Equal(t, Pending, l.State(block))
	assert.Equal(t, 1, l.Pending())

	cb := obs.callbacks[block]
	require.NotNil(t, cb)
	cb()
	cb()

	assert.Equal(t, Loaded, l.State(block))
	assert.Equal(t, []*html.Node{block}, obs.unobserved)
	assert.Equal(t, "url('https://img.example/a.jpg')", dom.Style(block, "background-image"))
}

func TestViewportObserver(t *testing.T) {
	root := cards(t, "https://img.example/0.jpg", "https://img.example/1.jpg", "https://img.example/2.jpg", "https://img.example/3.jpg")
	layout := FlowLayout{Root: root, Offset: 0, ItemHeight: 300}
	obs := NewViewportObserver(layout, 400)
	l := NewLoader(obs)

	// Viewport 0..400 grown to -200..600: blocks 0 (0-300) and 1 (300-600) intersect.
	require.Equal(t, 4, l.Register(root))
	blocks := mediaBlocks(root)
	assert.Equal(t, Loaded, l.State(blocks[0]))
	assert.Equal(t, Loaded, l.State(blocks[1]))
	assert.Equal(t, Pending, l.State(blocks[2]))
	assert.Equal(t, 2, obs.Observed())

	// 570..1370 now covers block 2 (600-900) and block 3 (900-1200).
	obs.Scroll(770)
	assert.Equal(t, Loaded, l.State(blocks[2]))
	assert.Equal(t, Loaded, l.State(blocks[3]))
	assert.Equal(t, 0, obs.Observed())
}

func TestViewportScrollRevealsEveryBlockInRange(t *testing.T) {
	images := make([]string, 5)
	for i := range images {
		images[i] = fmt.Sprintf("https://img.example/%d.jpg", i)
	}
	root := cards(t, images...)
	layout := FlowLayout{Root: root, Offset: 10000, ItemHeight: 100}
	obs := NewViewportObserver(layout, 1000)
	l := NewLoader(obs)

	require.Equal(t, 5, l.Register(root))
	assert.Equal(t, 5, l.Pending())

	// One scroll brings all five blocks (10000-10500) into view at once.
	obs.Scroll(10000)
	for i, b := range mediaBlocks(root) {
		assert.Equal(t, Loaded, l.State(b), "block %d", i)
	}
	assert.Equal(t, 0, obs.Observed())
	assert.Equal(t, 0, l.Pending())
}

func TestLoaderRelease(t *testing.T) {
	root := cards(t, "https://img.example/a.jpg", "https://img.example/b.jpg", "")
	obs := newCountingObserver()
	l := NewLoader(obs)
	require.Equal(t, 2, l.Register(root))

	blocks := mediaBlocks(root)
	obs.callbacks[blocks[0]]()
	require.Equal(t, Loaded, l.State(blocks[0]))
	require.Equal(t, 1, l.Pending())
	obs.unobserved = nil

	assert.Equal(t, 2, l.Release(root))
	assert.Equal(t, Unknown, l.State(blocks[0]))
	assert.Equal(t, Unknown, l.State(blocks[1]))
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, []*html.Node{blocks[1]}, obs.unobserved, "only pending blocks are still watched")

	assert.Equal(t, 0, l.Release(root))
}

func TestViewportThreshold(t *testing.T) {
	root := cards(t, "https://img.example/0.jpg")
	layout := FlowLayout{Root: root, Offset: 1000, ItemHeight: 100}
	obs := NewViewportObserver(layout, 500)
	l := NewLoader(obs)
	l.Register(root)
	block := mediaBlocks(root)[0]

	// Expanded bottom edge at 1005 shows 5% of the block.
	obs.Scroll(305)
	assert.Equal(t, Pending, l.State(block))

	// Bottom edge at 1010 shows 10%.
	obs.Scroll(310)
	assert.Equal(t, Loaded, l.State(block))
}

func TestCSSURLEscaping(t *testing.T) {
	assert.Equal(t, `https://a.example/it\'s.jpg`, cssURL("https://a.example/it's.jpg"))
	assert.Equal(t, `a\\b`, cssURL(`a\b`))
}
