// Package ordering holds the per-feed sort policies.
package ordering

import (
	"math"
	"slices"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dates"
)

// EventDisplayLimit caps how many events are shown after sorting.
const EventDisplayLimit = 20

// Events sorts ascending by date and start time and keeps the first limit records.
// Unparseable dates sort last; ties keep payload order. limit <= 0 keeps everything.
func Events(events []core.Event, parser dates.Parser, limit int) []core.Event {
	type keyed struct {
		event   core.Event
		ordinal float64
	}
	list := make([]keyed, len(events))
	for i, e := range events {
		list[i] = keyed{event: e, ordinal: parser.Event(e.Date, e.Start)}
	}
	slices.SortStableFunc(list, func(a, b keyed) int {
		return compareAscending(a.ordinal, b.ordinal)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]core.Event, len(list))
	for i, k := range list {
		out[i] = k.event
	}
	return out
}

// NewestFirst sorts descending by ISO date. A record whose date fails to parse
// always sorts after one that parses, whichever side of the comparison it is on;
// two failures keep their relative order.
func NewestFirst[T core.Dated](items []T, parser dates.Parser) []T {
	type keyed struct {
		item    T
		ordinal float64
	}
	list := make([]keyed, len(items))
	for i, it := range items {
		list[i] = keyed{item: it, ordinal: parser.ISO(it.DateString())}
	}
	slices.SortStableFunc(list, func(a, b keyed) int {
		return compareDescending(a.ordinal, b.ordinal)
	})
	out := make([]T, len(list))
	for i, k := range list {
		out[i] = k.item
	}
	return out
}

func compareAscending(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareDescending(a, b float64) int {
	aBad, bBad := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aBad && bBad:
		return 0
	case aBad:
		return 1
	case bBad:
		return -1
	}
	return compareAscending(b, a)
}
