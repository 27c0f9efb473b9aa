package render

import (
	"net/url"
	"strings"
)

// NoopHref is the non-navigating reference used for rejected URLs.
const NoopHref = "#"

// URLPolicy resolves references against the site origin and only lets http and
// https through.
type URLPolicy struct {
	Base *url.URL
}

// NewURLPolicy parses base; an empty or invalid base means relative references are rejected.
func NewURLPolicy(base string) URLPolicy {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return URLPolicy{}
	}
	return URLPolicy{Base: u}
}

// Allowed returns the absolute form of raw and whether it may become a link target.
func (p URLPolicy) Allowed(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	if p.Base != nil {
		u = p.Base.ResolveReference(u)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// Href is Allowed with the NoopHref fallback.
func (p URLPolicy) Href(raw string) string {
	if href, ok := p.Allowed(raw); ok {
		return href
	}
	return NoopHref
}
