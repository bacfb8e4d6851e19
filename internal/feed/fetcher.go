package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
)

const (
	DefaultUserAgent     = "Mozilla/5.0 (compatible; media-aggregator/1.0)"
	DefaultMaxRetries    = 2
	DefaultRetryInterval = 500 * time.Millisecond
	maxRetryInterval     = 5 * time.Second
)

// Fetcher retrieves and parses the feed at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, feedURL string) (*gofeed.Feed, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	return f(ctx, feedURL)
}

// FetcherOptions tunes an HTTPFetcher. Zero values select the defaults.
type FetcherOptions struct {
	Client        *http.Client
	UserAgent     string
	MaxRetries    int
	RetryInterval time.Duration
}

// HTTPFetcher downloads feeds over HTTP with gofeed and retries transient
// failures with exponential backoff. The caller's context bounds the whole
// attempt sequence.
type HTTPFetcher struct {
	client        *http.Client
	userAgent     string
	maxRetries    int
	retryInterval time.Duration
}

// NewHTTPFetcher returns an HTTPFetcher. A negative MaxRetries disables retries.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		client:        opts.Client,
		userAgent:     opts.UserAgent,
		maxRetries:    opts.MaxRetries,
		retryInterval: opts.RetryInterval,
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.maxRetries == 0 {
		f.maxRetries = DefaultMaxRetries
	}
	if f.maxRetries < 0 {
		f.maxRetries = 0
	}
	if f.retryInterval <= 0 {
		f.retryInterval = DefaultRetryInterval
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryInterval
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxRetries)), ctx)

	feed, err := backoff.RetryWithData(func() (*gofeed.Feed, error) {
		feed, err := f.fetchOnce(ctx, feedURL)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return feed, err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feedURL, err)
	}
	return feed, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	// gofeed.Parser keeps decoder state, so each attempt gets its own.
	fp := gofeed.NewParser()
	fp.Client = f.client
	fp.UserAgent = f.userAgent
	return fp.ParseURLWithContext(feedURL, ctx)
}

// isRetryable reports whether a fetch error is worth another attempt:
// rate limiting, server errors and network failures. Cancellation and parse
// errors are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
