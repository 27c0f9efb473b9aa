// Package links fills the static link anchors and imprint of the host page from
// the site links resource.
package links

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/dom"
	"github.com/bakkerme/feedboard/internal/normalize"
	"github.com/bakkerme/feedboard/internal/render"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

// Links is the decoded links resource.
type Links struct {
	WhatsApp        string
	Newsletter      string
	Info            string
	Petition        string
	Datenschutz     string
	ImpressumName   string
	ImpressumMail   string
	ContactEndpoint string
}

// DefaultAnchors maps resource keys to the anchor ids whose href they set.
var DefaultAnchors = map[string]string{
	"whatsapp":    "link-whatsapp",
	"newsletter":  "link-newsletter",
	"info":        "link-info",
	"petition":    "link-petition",
	"datenschutz": "link-dse",
}

// DefaultTexts maps resource keys to the element ids whose text they set.
var DefaultTexts = map[string]string{
	"impressum_name": "impressum-name",
	"impressum_mail": "impressum-mail",
}

const (
	contactSubmitID = "contact-submit"
	contactHintID   = "contact-hint"
	contactEnabled  = "Nachricht wird an unser Postfach gesendet."
)

// Decode reads the links resource. Only the object shape is accepted.
func Decode(data []byte) (Links, error) {
	payload, err := normalize.Decode(data)
	if err != nil {
		return Links{}, err
	}
	if !payload.IsObject() {
		return Links{}, fmt.Errorf("%w: links resource is not an object", normalize.ErrDecode)
	}
	return Links{
		WhatsApp:        normalize.Field(payload, "whatsapp"),
		Newsletter:      normalize.Field(payload, "newsletter"),
		Info:            normalize.Field(payload, "info"),
		Petition:        normalize.Field(payload, "petition"),
		Datenschutz:     normalize.Field(payload, "datenschutz"),
		ImpressumName:   normalize.Field(payload, "impressum_name"),
		ImpressumMail:   normalize.Field(payload, "impressum_mail"),
		ContactEndpoint: normalize.Field(payload, "contact_endpoint"),
	}, nil
}

// Section binds the links resource to the host page.
type Section struct {
	URL     string
	Fetcher feedjson.Fetcher
	Doc     *dom.Document
	URLs    render.URLPolicy
	Anchors map[string]string
	Texts   map[string]string
}

// Result reports what Apply changed.
type Result struct {
	Links Links
	// ContactEndpoint is the sanitized endpoint, empty when the contact form stays disabled.
	ContactEndpoint string
}

// Apply fetches the resource and updates the page. On any failure the page is
// left untouched and the error is logged and returned.
func (s *Section) Apply(ctx context.Context) (Result, error) {
	logger := core.LoggerFromContext(core.WithFeed(ctx, "links")).With("feed", "links")

	data, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		logger.Warn("links resource unavailable", "error", err)
		return Result{}, err
	}
	l, err := Decode(data)
	if err != nil {
		logger.Warn("links resource unreadable", "error", err)
		return Result{}, err
	}

	anchors := lo.Assign(DefaultAnchors, s.Anchors)
	texts := lo.Assign(DefaultTexts, s.Texts)
	values := map[string]string{
		"whatsapp":       l.WhatsApp,
		"newsletter":     l.Newsletter,
		"info":           l.Info,
		"petition":       l.Petition,
		"datenschutz":    l.Datenschutz,
		"impressum_name": l.ImpressumName,
		"impressum_mail": l.ImpressumMail,
	}

	res := Result{Links: l}
	if l.ContactEndpoint != "" {
		res.ContactEndpoint = s.URLs.Href(l.ContactEndpoint)
	}

	s.Doc.Update(func() {
		for _, key := range lo.Keys(anchors) {
			if n := s.Doc.ByID(anchors[key]); n != nil {
				dom.SetAttr(n, "href", s.URLs.Href(values[key]))
			}
		}
		for _, key := range lo.Keys(texts) {
			if values[key] == "" {
				continue
			}
			if n := s.Doc.ByID(texts[key]); n != nil {
				s.Doc.SetText(n, values[key])
			}
		}
		if res.ContactEndpoint == "" {
			return
		}
		if submit := s.Doc.ByID(contactSubmitID); submit != nil {
			dom.RemoveAttr(submit, "disabled")
		}
		if hint := s.Doc.ByID(contactHintID); hint != nil {
			s.Doc.SetText(hint, contactEnabled)
		}
	})
	logger.Debug("links applied", "contact", res.ContactEndpoint != "")
	return res, nil
}
