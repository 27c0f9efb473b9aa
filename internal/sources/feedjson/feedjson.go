// Package feedjson retrieves the raw bytes of a feed resource.
package feedjson

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStatus marks a non-success HTTP response. It is wrapped by *StatusError.
	ErrStatus = errors.New("feed: unexpected status")
	// ErrTransport marks a request that never produced a response.
	ErrTransport = errors.New("feed: transport failure")
)

// StatusError carries the status code of a failed retrieval.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code == 429 || e.Code >= 500
}

// Fetcher retrieves a feed resource with caching disabled.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
