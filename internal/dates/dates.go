// Package dates turns the date strings found in feed payloads into comparable ordinals.
//
// Two grammars are understood: DD.MM.YYYY with an optional HH:MM clock (events) and
// YYYY-MM-DD (press and news). An ordinal is the Unix time in milliseconds of the
// local calendar instant. Parse failures are reported through sentinel ordinals
// rather than errors because partial records are expected in untrusted feeds.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	eventDatePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	clockPattern     = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// EventFailure is returned for unparseable event dates. It sorts after every valid ordinal.
var EventFailure = math.Inf(1)

// ISOFailure is returned for unparseable press/news dates.
var ISOFailure = math.NaN()

// Parser resolves calendar instants in Location (time.Local when nil).
type Parser struct {
	Location *time.Location
}

// Local parses in the process time zone, the way the page session would.
var Local = Parser{}

func (p Parser) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Event returns the ordinal of an event date plus optional start clock.
// A missing or malformed clock defaults to midnight; a malformed date yields EventFailure.
func (p Parser) Event(date, clock string) float64 {
	t, ok := p.EventTime(date, clock)
	if !ok {
		return EventFailure
	}
	return float64(t.UnixMilli())
}

// EventTime is Event without the ordinal conversion.
func (p Parser) EventTime(date, clock string) (time.Time, bool) {
	m := eventDatePattern.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return time.Time{}, false
	}
	day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if !validDate(year, month, day) {
		return time.Time{}, false
	}
	hour, minute, _ := Clock(clock)
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, p.location()), true
}

// ISO returns the ordinal of a YYYY-MM-DD date at midnight, or ISOFailure.
func (p Parser) ISO(date string) float64 {
	t, ok := p.ISOTime(date)
	if !ok {
		return ISOFailure
	}
	return float64(t.UnixMilli())
}

// ISOTime is ISO without the ordinal conversion.
func (p Parser) ISOTime(date string) (time.Time, bool) {
	m := isoDatePattern.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return time.Time{}, false
	}
	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if !validDate(year, month, day) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.location()), true
}

// Clock parses HH:MM. ok is false (and the result midnight) for anything else.
func Clock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, minute = atoi(m[1]), atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// Failed reports whether o is one of the parse failure sentinels.
func Failed(o float64) bool {
	return math.IsNaN(o) || math.IsInf(o, 0)
}

// validDate rejects dates time.Date would silently normalize, e.g. 31.02.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
