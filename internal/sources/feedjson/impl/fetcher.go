package impl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/observability/otelx"
	"github.com/bakkerme/feedboard/internal/retry"
	"github.com/bakkerme/feedboard/internal/sources/feedjson"
)

const defaultUserAgent = "feedboard/0.1"

type Fetcher struct {
	client      *http.Client
	userAgent   string
	attempts    int
	maxBodySize int64
	bustCache   bool
	now         func() time.Time
}

type Option func(*Fetcher)

// WithoutCacheBusting keeps request URLs unchanged. Meant for third-party
// pages where an extra query parameter may change the response.
func WithoutCacheBusting() Option {
	return func(f *Fetcher) { f.bustCache = false }
}

func NewFetcher(timeout time.Duration, userAgent string, attempts int, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		attempts:    attempts,
		maxBodySize: 10 << 20, // 10 MiB
		bustCache:   true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a GET with a cache-busting query parameter and no-store headers.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, span := otelx.Start(ctx, otelx.ComponentFetch, "feedjson.fetch", attribute.String("feed.url", rawURL))
	defer span.End()

	target, err := f.bust(rawURL)
	if err != nil {
		otelx.Fail(span, err)
		return nil, err
	}

	logger := core.LoggerFromContext(ctx)
	var body []byte
	cfg := retry.Config{
		Attempts:  f.attempts,
		BaseDelay: 200 * time.Millisecond,
		Retryable: transient,
	}
	err = retry.Do(ctx, cfg, func() error {
		b, err := f.get(ctx, target, rawURL)
		if err != nil {
			logger.Debug("feed fetch attempt failed", "url", rawURL, "error", err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		otelx.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.bytes", len(body)))
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, target, display string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", feedjson.ErrTransport, err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, application/atom+xml;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", feedjson.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &feedjson.StatusError{URL: display, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", feedjson.ErrTransport, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: response too large", feedjson.ErrTransport)
	}
	return body, nil
}

// bust appends the current time as a bare query parameter, the way the page
// script defeats intermediate caches.
func (f *Fetcher) bust(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %v", feedjson.ErrTransport, err)
	}
	if !f.bustCache {
		return u.String(), nil
	}
	stamp := strconv.FormatInt(f.now().UnixNano(), 10)
	if u.RawQuery == "" {
		u.RawQuery = stamp
	} else {
		u.RawQuery += "&" + stamp
	}
	return u.String(), nil
}

func transient(err error) bool {
	var status *feedjson.StatusError
	if errors.As(err, &status) {
		return status.Transient()
	}
	return errors.Is(err, feedjson.ErrTransport)
}
