package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/bakkerme/feedboard/internal/core"
)

// Default alternate keys tried after items and data.items.
var (
	EventAlternates = []string{"events"}
	PressAlternates = []string{"press"}
	NewsAlternates  = []string{"news"}
)

func Event(record gjson.Result) core.Event {
	return core.Event{
		Title:    Field(record, "title"),
		Date:     Field(record, "date"),
		Start:    Field(record, "time.start"),
		End:      Field(record, "time.end"),
		Location: Field(record, "location"),
		URL:      Field(record, "detail_url"),
	}
}

func Press(record gjson.Result) core.PressItem {
	return core.PressItem{
		Title:   Field(record, "title"),
		URL:     Field(record, "url"),
		Source:  Field(record, "source"),
		Date:    Field(record, "date"),
		Image:   Field(record, "image"),
		Excerpt: Field(record, "excerpt"),
	}
}

func News(record gjson.Result) core.NewsItem {
	return core.NewsItem{
		Title: Field(record, "title"),
		URL:   Field(record, "url"),
		Date:  Field(record, "date"),
		Image: Field(record, "image"),
		Text:  Field(record, "text"),
	}
}

// Events normalizes an events payload. alternates replaces EventAlternates when non-empty.
func Events(data []byte, alternates ...string) ([]core.Event, error) {
	if len(alternates) == 0 {
		alternates = EventAlternates
	}
	return Records(data, Strategies(alternates...), Event)
}

func PressItems(data []byte, alternates ...string) ([]core.PressItem, error) {
	if len(alternates) == 0 {
		alternates = PressAlternates
	}
	return Records(data, Strategies(alternates...), Press)
}

func NewsItems(data []byte, alternates ...string) ([]core.NewsItem, error) {
	if len(alternates) == 0 {
		alternates = NewsAlternates
	}
	return Records(data, Strategies(alternates...), News)
}
