// Package paginate provides the windowed cursor used by "load more" feeds.
package paginate

// DefaultPageSize is the number of cards revealed per slice.
const DefaultPageSize = 6

// Cursor walks a fixed, already sorted list in pages. It is bound to the list it
// was built from: when the list changes, build a new Cursor instead of mutating one.
type Cursor[T any] struct {
	items    []T
	position int
	pageSize int
}

// New returns a cursor at position 0. pageSize <= 0 means DefaultPageSize.
func New[T any](items []T, pageSize int) *Cursor[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor[T]{items: items, pageSize: pageSize}
}

// Reset rewinds to the first page.
func (c *Cursor[T]) Reset() {
	c.position = 0
}

// Next returns items [position, min(position+pageSize, total)) and advances.
// Once exhausted it returns an empty slice and exhausted=true on every call.
// exhausted is also true for the call that hands out the final page.
func (c *Cursor[T]) Next() (slice []T, exhausted bool) {
	total := len(c.items)
	if c.position >= total {
		return nil, true
	}
	end := min(c.position+c.pageSize, total)
	slice = c.items[c.position:end]
	c.position = end
	return slice, c.position >= total
}

// Exhausted reports whether every item has been handed out.
func (c *Cursor[T]) Exhausted() bool {
	return c.position >= len(c.items)
}

func (c *Cursor[T]) Position() int { return c.position }
func (c *Cursor[T]) Total() int    { return len(c.items) }
func (c *Cursor[T]) PageSize() int { return c.pageSize }
