package scrape

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bakkerme/feedboard/internal/dates"
)

const (
	icsProdID    = "-//Elterninitiative KW//Termine//DE"
	icsUIDDomain = "elterninitiative-kw"
	icsStamp     = "20060102T150405Z"
	icsLineLimit = 75
)

// DefaultEventDuration is used when a session has no end time.
const DefaultEventDuration = 2 * time.Hour

// uidNamespace scopes the name-based session UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://"+icsUIDDomain+"/termine"))

var icsText = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// ICS renders sessions as an iCalendar document with CRLF line endings.
// Times are written in UTC; sessions without a usable date are skipped.
func ICS(sessions []Session, loc *time.Location, duration time.Duration, stamp time.Time) string {
	if duration <= 0 {
		duration = DefaultEventDuration
	}
	parser := dates.Parser{Location: loc}
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, s := range sessions {
		start, ok := parser.EventTime(s.Date, s.Time.Start)
		if !ok {
			continue
		}
		end := start.Add(duration)
		if s.Time.End != "" {
			if e, ok := parser.EventTime(s.Date, s.Time.End); ok && e.After(start) {
				end = e
			}
		}
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+SessionUID(s, start),
			"DTSTAMP:"+stamp.UTC().Format(icsStamp),
			"DTSTART:"+start.UTC().Format(icsStamp),
			"DTEND:"+end.UTC().Format(icsStamp),
			fold("SUMMARY:"+icsText.Replace(s.Title)),
			fold("LOCATION:"+icsText.Replace(s.Location)),
			fold("URL:"+s.DetailURL),
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

// SessionUID is stable across runs for the same session.
func SessionUID(s Session, start time.Time) string {
	id := uuid.NewSHA1(uidNamespace, []byte(s.Title+"|"+s.Date+"|"+s.Time.Start))
	return start.UTC().Format(icsStamp) + "-" + id.String() + "@" + icsUIDDomain
}

// fold splits content lines longer than 75 octets, never inside a UTF-8 sequence.
func fold(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}
	var b strings.Builder
	limit := icsLineLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8Start(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines lose one octet to the leading space.
		limit = icsLineLimit - 1
	}
	b.WriteString(line)
	return b.String()
}

func utf8Start(c byte) bool { return c&0xC0 != 0x80 }
