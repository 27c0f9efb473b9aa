// Package validate checks feed payloads before they are published.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// PressKeys are required on every press entry.
var PressKeys = []string{"title", "url", "source", "date", "image", "excerpt"}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var ErrInvalid = errors.New("invalid press payload")

// EntryError reports the first violation of an entry. Index is 1-based.
type EntryError struct {
	Index  int
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("Eintrag #%d: %s", e.Index, e.Reason)
}

func (e *EntryError) Unwrap() error { return ErrInvalid }

// Press validates a press payload and returns the number of entries.
func Press(data []byte) (int, error) {
	if !gjson.ValidBytes(data) {
		return 0, fmt.Errorf("%w: not valid JSON", ErrInvalid)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return 0, fmt.Errorf("%w: top level must be an array", ErrInvalid)
	}

	entries := root.Array()
	for i, entry := range entries {
		if reason := checkPressEntry(entry); reason != "" {
			return 0, &EntryError{Index: i + 1, Reason: reason}
		}
	}
	return len(entries), nil
}

func checkPressEntry(entry gjson.Result) string {
	if !entry.IsObject() {
		return "kein Objekt"
	}
	for _, key := range PressKeys {
		v := entry.Get(key)
		if !v.Exists() {
			return fmt.Sprintf("Feld %q fehlt", key)
		}
		if v.Type != gjson.String {
			return fmt.Sprintf("Feld %q ist kein Text", key)
		}
	}
	field := func(key string) string { return strings.TrimSpace(entry.Get(key).String()) }
	switch {
	case field("title") == "":
		return "title ist leer"
	case field("source") == "":
		return "source ist leer"
	case !webURL(field("url")):
		return "url muss mit http:// oder https:// beginnen"
	case !isoDate.MatchString(field("date")):
		return "date muss das Format YYYY-MM-DD haben"
	}
	if image := field("image"); image != "" && !webURL(image) {
		return "image muss leer sein oder mit http:// oder https:// beginnen"
	}
	return ""
}

func webURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
