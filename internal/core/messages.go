package core

// Messages are the user-visible strings of the feed sections. The zero value of a
// field falls back to the German default the site ships with.
type Messages struct {
	EventsEmpty     string `yaml:"events_empty" json:"events_empty"`
	EventsFailed    string `yaml:"events_failed" json:"events_failed"`
	EventsRetryHint string `yaml:"events_retry_hint" json:"events_retry_hint"`
	FeedEmpty       string `yaml:"feed_empty" json:"feed_empty"`
	FeedFailed      string `yaml:"feed_failed" json:"feed_failed"`
	EventTitle      string `yaml:"event_title" json:"event_title"`
	EventDetails    string `yaml:"event_details" json:"event_details"`
	ClockSuffix     string `yaml:"clock_suffix" json:"clock_suffix"`
	PressTitle      string `yaml:"press_title" json:"press_title"`
	PressAction     string `yaml:"press_action" json:"press_action"`
	PressAriaPrefix string `yaml:"press_aria_prefix" json:"press_aria_prefix"`
	NewsTitle       string `yaml:"news_title" json:"news_title"`
	NewsAction      string `yaml:"news_action" json:"news_action"`
	ExcerptFallback string `yaml:"excerpt_fallback" json:"excerpt_fallback"`
}

// DefaultMessages returns the German strings used by the site.
func DefaultMessages() Messages {
	return Messages{
		EventsEmpty:     "Aktuell liegen keine kommenden Termine vor.",
		EventsFailed:    "Termine konnten nicht geladen werden.",
		EventsRetryHint: "Bitte später erneut prüfen.",
		FeedEmpty:       "Aktuell liegen keine Beiträge vor.",
		FeedFailed:      "Beiträge konnten nicht geladen werden.",
		EventTitle:      "Sitzung",
		EventDetails:    "Details",
		ClockSuffix:     "Uhr",
		PressTitle:      "Artikel",
		PressAction:     "Zum Artikel",
		PressAriaPrefix: "Zum Artikel: ",
		NewsTitle:       "Update",
		NewsAction:      "Weiterlesen",
		ExcerptFallback: "Kurzinfo folgt.",
	}
}

// WithDefaults fills every empty field from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.EventsEmpty, d.EventsEmpty)
	fill(&m.EventsFailed, d.EventsFailed)
	fill(&m.EventsRetryHint, d.EventsRetryHint)
	fill(&m.FeedEmpty, d.FeedEmpty)
	fill(&m.FeedFailed, d.FeedFailed)
	fill(&m.EventTitle, d.EventTitle)
	fill(&m.EventDetails, d.EventDetails)
	fill(&m.ClockSuffix, d.ClockSuffix)
	fill(&m.PressTitle, d.PressTitle)
	fill(&m.PressAction, d.PressAction)
	fill(&m.PressAriaPrefix, d.PressAriaPrefix)
	fill(&m.NewsTitle, d.NewsTitle)
	fill(&m.NewsAction, d.NewsAction)
	fill(&m.ExcerptFallback, d.ExcerptFallback)
	return m
}
