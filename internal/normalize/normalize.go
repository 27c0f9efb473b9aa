// Package normalize coerces arbitrary feed payloads into the canonical record schemas.
//
// Locating the record list is an ordered list of strategies; the first one that
// yields an array wins. Field access never fails: a missing or non-scalar field
// becomes the empty string.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrDecode means the payload is not valid structured data.
	ErrDecode = errors.New("payload is not valid json")
	// ErrNoRecordList means the payload decoded but no strategy located a list.
	ErrNoRecordList = errors.New("payload carries no record list")
)

// Strategy is a pure lookup of the record list inside a decoded payload.
type Strategy func(payload gjson.Result) (gjson.Result, bool)

// TopLevelArray matches payloads that are themselves an array.
func TopLevelArray(payload gjson.Result) (gjson.Result, bool) {
	if payload.IsArray() {
		return payload, true
	}
	return gjson.Result{}, false
}

// Path matches an array found under a dotted object path such as "data.items".
func Path(path string) Strategy {
	return func(payload gjson.Result) (gjson.Result, bool) {
		if !payload.IsObject() {
			return gjson.Result{}, false
		}
		list := payload.Get(path)
		if list.IsArray() {
			return list, true
		}
		return gjson.Result{}, false
	}
}

// Strategies returns the resolution order: top-level array, .items, .data.items,
// then each feed-specific alternate key.
func Strategies(alternates ...string) []Strategy {
	out := []Strategy{TopLevelArray, Path("items"), Path("data.items")}
	for _, key := range alternates {
		if key = strings.TrimSpace(key); key != "" {
			out = append(out, Path(key))
		}
	}
	return out
}

// Decode validates and parses a raw payload.
func Decode(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, ErrDecode
	}
	return gjson.ParseBytes(data), nil
}

// Locate runs strategies in order and returns the elements of the first match.
func Locate(payload gjson.Result, strategies []Strategy) ([]gjson.Result, bool) {
	for _, strategy := range strategies {
		if list, ok := strategy(payload); ok {
			return list.Array(), true
		}
	}
	return nil, false
}

// Records decodes data, locates the list and maps every element with convert.
// Elements are never dropped. The error is ErrDecode or ErrNoRecordList (wrapped).
func Records[T any](data []byte, strategies []Strategy, convert func(gjson.Result) T) ([]T, error) {
	payload, err := Decode(data)
	if err != nil {
		return nil, err
	}
	list, ok := Locate(payload, strategies)
	if !ok {
		return nil, fmt.Errorf("%w (top-level %s)", ErrNoRecordList, payload.Type)
	}
	out := make([]T, 0, len(list))
	for _, element := range list {
		out = append(out, convert(element))
	}
	return out, nil
}

// Field reads path from a record as a trimmed string. Strings and numbers are
// stringified; booleans, null, objects, arrays and missing paths become "".
// A path through a non-object (e.g. "time.start" where time is a string) is missing.
func Field(record gjson.Result, path string) string {
	if !record.IsObject() {
		return ""
	}
	value := record.Get(path)
	switch value.Type {
	case gjson.String:
		return strings.TrimSpace(value.Str)
	case gjson.Number:
		return strings.TrimSpace(value.Raw)
	default:
		return ""
	}
}
