// Package application composes the parent council application message from a
// form with a variable number of child rows.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/normalize"
	"github.com/bakkerme/feedboard/internal/outputs/email"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

const crlf = "\r\n"

// Template is the fixed frame around the form data.
type Template struct {
	To      string
	Subject string
	Intro   []string
	Closing []string
}

// DefaultTemplate is the message the city expects.
func DefaultTemplate() Template {
	return Template{
		To:      "buergermeisterin@stadt-kw.de",
		Subject: "Bewerbung als Mitglied des Elternbeirats der Stadt Königs Wusterhausen",
		Intro: []string{
			"Sehr geehrte Frau Bürgermeisterin,",
			"",
			"gemäß § 12 Abs. 3 der Hauptsatzung der Stadt Königs Wusterhausen bewerbe ich mich hiermit als Mitglied des Elternbeirats.",
			"",
			"Ich möchte mich aktiv an der Vertretung der Interessen der Kinder und Familien in unserer Stadt beteiligen und einen Beitrag zu einer konstruktiven Zusammenarbeit zwischen Eltern, Einrichtungen und Verwaltung leisten.",
			"",
		},
		Closing: []string{"Mit freundlichen Grüßen", "[VORNAME] [NACHNAME]"},
	}
}

// Merge overrides t with the non-empty parts of o. An explicitly empty list in o
// still replaces the list in t when set is true for it.
func (t Template) Merge(o Template, introSet, closingSet bool) Template {
	t.To = lo.Ternary(o.To != "", o.To, t.To)
	t.Subject = lo.Ternary(o.Subject != "", o.Subject, t.Subject)
	if introSet {
		t.Intro = o.Intro
	}
	if closingSet {
		t.Closing = o.Closing
	}
	return t
}

// DecodeOverrides reads the application override resource. Keys that are
// missing or of the wrong type keep the base value.
func DecodeOverrides(base Template, data []byte) (Template, error) {
	payload, err := normalize.Decode(data)
	if err != nil {
		return base, err
	}
	lines := func(key string) ([]string, bool) {
		v := payload.Get(key)
		if !v.IsArray() {
			return nil, false
		}
		return lo.Map(v.Array(), func(r gjson.Result, _ int) string { return r.String() }), true
	}
	intro, introSet := lines("intro")
	closing, closingSet := lines("closing")
	return base.Merge(Template{
		To:      normalize.Field(payload, "to"),
		Subject: normalize.Field(payload, "subject"),
		Intro:   intro,
		Closing: closing,
	}, introSet, closingSet), nil
}

// LoadTemplate fetches overrides for base from url. Any failure keeps base and is logged.
func LoadTemplate(ctx context.Context, fetcher feedjson.Fetcher, base Template, url string) Template {
	if url == "" {
		return base
	}
	logger := core.LoggerFromContext(ctx)
	data, err := fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warn("application overrides unavailable", "error", err)
		return base
	}
	t, err := DecodeOverrides(base, data)
	if err != nil {
		logger.Warn("application overrides unreadable", "error", err)
		return base
	}
	return t
}

// Child is one row of the children list.
type Child struct {
	First       string `yaml:"first" json:"first"`
	Last        string `yaml:"last" json:"last"`
	Institution string `yaml:"institution" json:"institution"`
}

func (c Child) trimmed() Child {
	return Child{First: strings.TrimSpace(c.First), Last: strings.TrimSpace(c.Last), Institution: strings.TrimSpace(c.Institution)}
}

func (c Child) blank() bool      { return c.First == "" && c.Last == "" && c.Institution == "" }
func (c Child) complete() bool   { return c.First != "" && c.Last != "" && c.Institution != "" }
func (c Child) fullName() string { return joinNonEmpty(" ", c.First, c.Last) }

// Parent holds the applicant's contact data.
type Parent struct {
	First   string `yaml:"first" json:"first"`
	Last    string `yaml:"last" json:"last"`
	Phone   string `yaml:"phone" json:"phone"`
	Street  string `yaml:"street" json:"street"`
	HouseNo string `yaml:"house_no" json:"house_no"`
	Zip     string `yaml:"zip" json:"zip"`
	City    string `yaml:"city" json:"city"`
}

func (p Parent) trimmed() Parent {
	return Parent{
		First:   strings.TrimSpace(p.First),
		Last:    strings.TrimSpace(p.Last),
		Phone:   strings.TrimSpace(p.Phone),
		Street:  strings.TrimSpace(p.Street),
		HouseNo: strings.TrimSpace(p.HouseNo),
		Zip:     strings.TrimSpace(p.Zip),
		City:    strings.TrimSpace(p.City),
	}
}

// address renders "Street No, Zip, City".
func (p Parent) address() string {
	return joinNonEmpty(", ", joinNonEmpty(" ", p.Street, p.HouseNo), joinNonEmpty(", ", p.Zip, p.City))
}

// Form is the application form. It always holds at least one child row.
type Form struct {
	Parent   Parent
	children []Child
	template Template
}

func NewForm(t Template) *Form {
	return &Form{template: t, children: []Child{{}}}
}

func (f *Form) Template() Template { return f.template }

// Children returns a copy of the rows.
func (f *Form) Children() []Child { return append([]Child(nil), f.children...) }

// AddChild appends a row and returns its index.
func (f *Form) AddChild(c Child) int {
	f.children = append(f.children, c)
	return len(f.children) - 1
}

// SetChild replaces row i.
func (f *Form) SetChild(i int, c Child) error {
	if i < 0 || i >= len(f.children) {
		return fmt.Errorf("child row %d out of range", i)
	}
	f.children[i] = c
	return nil
}

// RemoveChild deletes row i. The last remaining row cannot be removed.
func (f *Form) RemoveChild(i int) bool {
	if len(f.children) <= 1 || i < 0 || i >= len(f.children) {
		return false
	}
	f.children = append(f.children[:i], f.children[i+1:]...)
	return true
}

// CanRemove reports whether the remove buttons are enabled.
func (f *Form) CanRemove() bool { return len(f.children) > 1 }

// Body builds the CRLF-joined message text.
func (f *Form) Body() string {
	p := f.Parent.trimmed()
	lines := append([]string(nil), f.template.Intro...)

	kids := lo.Reject(lo.Map(f.children, func(c Child, _ int) Child { return c.trimmed() }),
		func(c Child, _ int) bool { return c.blank() })
	if len(kids) > 0 {
		lines = append(lines, "Meine Kinder:")
		for _, k := range kids {
			lines = append(lines, "• "+joinNonEmpty(" | ", k.fullName(), k.Institution))
		}
		lines = append(lines, "")
	}

	contact := lo.Compact([]string{joinNonEmpty(" ", p.First, p.Last), p.address(), p.Phone})
	if len(contact) > 0 {
		lines = append(lines, "Kontaktdaten:")
		lines = append(lines, contact...)
		lines = append(lines, "")
	}

	for _, l := range f.template.Closing {
		l = strings.Replace(l, "[VORNAME]", p.First, 1)
		l = strings.Replace(l, "[NACHNAME]", p.Last, 1)
		lines = append(lines, l)
	}
	return strings.Join(lines, crlf)
}

// Valid requires the parent name, a full address and one complete child.
func (f *Form) Valid() bool {
	p := f.Parent.trimmed()
	if p.First == "" || p.Last == "" || p.Street == "" || p.HouseNo == "" || p.Zip == "" || p.City == "" {
		return false
	}
	return lo.SomeBy(f.children, func(c Child) bool { return c.trimmed().complete() })
}

// MailtoHref is the mailto link with subject and body percent-encoded.
func (f *Form) MailtoHref() string {
	return "mailto:" + encodeComponent(f.template.To) +
		"?subject=" + encodeComponent(f.template.Subject) +
		"&body=" + encodeComponent(f.Body())
}

// Hint is the call-to-action tooltip.
func (f *Form) Hint() string {
	if f.Valid() {
		return "E-Mail in deinem Mailprogramm öffnen"
	}
	return "Bitte Pflichtfelder ausfüllen (Elternname, vollständige Adresse, mind. ein Kind mit Vor-/Nachname & Einrichtung)."
}

// ErrIncomplete is returned by Send for a form that fails Valid.
var ErrIncomplete = errors.New("application form is incomplete")

// Send delivers the composed message.
func (f *Form) Send(ctx context.Context, sender email.Sender, from string) error {
	if !f.Valid() {
		return ErrIncomplete
	}
	return sender.Send(ctx, email.Message{
		From:    from,
		To:      f.template.To,
		Subject: f.template.Subject,
		Body:    f.Body(),
		Type:    email.TextPlain,
	})
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(lo.Compact(parts), sep)
}

const upperHex = "0123456789ABCDEF"

// encodeComponent percent-encodes s the way browsers encode a URI component:
// letters, digits and -_.!~*'() stay as they are, every other UTF-8 byte
// becomes %XX.
func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if componentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func componentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
