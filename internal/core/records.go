package core

// Kind names one of the independently fetched content sources.
type Kind string

const (
	KindEvents Kind = "events"
	KindPress  Kind = "press"
	KindNews   Kind = "news"
)

// Valid reports whether k is one of the known feed kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindEvents, KindPress, KindNews:
		return true
	}
	return false
}

// Event is a calendar entry. Date is DD.MM.YYYY, Start and End are HH:MM.
// Records are immutable once normalized; a malformed Date is kept and sorted last.
type Event struct {
	Title    string `json:"title" yaml:"title"`
	Date     string `json:"date" yaml:"date"`
	Start    string `json:"start,omitempty" yaml:"start,omitempty"`
	End      string `json:"end,omitempty" yaml:"end,omitempty"`
	Location string `json:"location" yaml:"location"`
	URL      string `json:"url" yaml:"url"`
}

// PressItem is an external press mention. Date is YYYY-MM-DD.
type PressItem struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Date    string `json:"date" yaml:"date"`
	Image   string `json:"image,omitempty" yaml:"image,omitempty"`
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// NewsItem is a first-party update. It carries Text instead of Excerpt and has no Source.
type NewsItem struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
	Date  string `json:"date" yaml:"date"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Dated is implemented by records ordered newest first by an ISO date.
type Dated interface {
	DateString() string
}

func (p PressItem) DateString() string { return p.Date }
func (n NewsItem) DateString() string  { return n.Date }
