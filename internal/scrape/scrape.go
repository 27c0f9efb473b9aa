package scrape

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dates"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

const (
	DefaultSourceURL = "https://sessionnet.owl-it.de/koenigs_wusterhausen/bi/si0046.asp"
	DefaultMaxItems  = 200
)

// Result is the termine.json document.
type Result struct {
	Source      string    `json:"source"`
	GeneratedAt string    `json:"generated_at"`
	Filters     []string  `json:"filters"`
	Timezone    string    `json:"timezone"`
	Items       []Session `json:"items"`
}

// Scraper turns the session list page into the upcoming sessions.
type Scraper struct {
	SourceURL string
	Fetcher   feedjson.Fetcher
	Filter    *Filter
	Location  *time.Location
	MaxItems  int
	Now       func() time.Time
}

// Run fetches and parses the list, keeps allowed future sessions, removes
// duplicates, sorts ascending and caps the result.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	logger := core.LoggerFromContext(ctx)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	parser := dates.Parser{Location: loc}

	page, err := s.Fetcher.Fetch(ctx, s.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch session list: %w", err)
	}
	raw, err := ParseList(page, s.SourceURL)
	if err != nil {
		return nil, err
	}

	type dated struct {
		session Session
		at      time.Time
	}
	cutoff := now().In(loc)
	seen := make(map[[3]string]bool)
	var kept []dated
	for _, session := range raw {
		ok, err := s.Filter.Keep(session)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		at, valid := parser.EventTime(session.Date, session.Time.Start)
		if !valid {
			logger.Debug("session without usable date dropped", "title", session.Title, "date", session.Date)
			continue
		}
		if at.Before(cutoff) {
			continue
		}
		key := [3]string{session.Title, session.Date, session.Time.Start}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, dated{session: session, at: at})
	}
	slices.SortStableFunc(kept, func(a, b dated) int { return a.at.Compare(b.at) })

	limit := s.MaxItems
	if limit <= 0 {
		limit = DefaultMaxItems
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	logger.Info("sessions scraped", "listed", len(raw), "kept", len(kept))

	return &Result{
		Source:      s.SourceURL,
		GeneratedAt: now().UTC().Format(time.RFC3339),
		Filters:     s.Filter.Allow(),
		Timezone:    loc.String(),
		Items:       lo.Map(kept, func(d dated, _ int) Session { return d.session }),
	}, nil
}
