package mock

import (
	"context"
	"fmt"
	"sync"
)

// Fetcher serves canned bodies by URL and counts calls.
type Fetcher struct {
	BodyByURL map[string][]byte
	ErrByURL  map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	f.mu.Unlock()

	if err, ok := f.ErrByURL[url]; ok {
		return nil, err
	}
	body, ok := f.BodyByURL[url]
	if !ok {
		return nil, fmt.Errorf("mock: no body for %s", url)
	}
	return body, nil
}

// Calls returns how often url was fetched.
func (f *Fetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}
