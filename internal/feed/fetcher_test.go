package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(retries int) *HTTPFetcher {
	return NewHTTPFetcher(FetcherOptions{MaxRetries: retries, RetryInterval: time.Millisecond})
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var ua atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, youtubeAtom)
	}))
	defer ts.Close()

	f, err := newTestFetcher(0).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Chaîne Test", f.Title)
	assert.Len(t, f.Items, 2)
	assert.Equal(t, DefaultUserAgent, ua.Load())
}

func TestHTTPFetcher_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, datelessRSS)
	}))
	defer ts.Close()

	f, err := newTestFetcher(3).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Len(t, f.Items, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestFetcher(3).Fetch(context.Background(), ts.URL)
	require.Error(t, err)

	var httpErr gofeed.HTTPError
	require.True(t, errors.As(err, &httpErr), "got %T: %v", err, err)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newTestFetcher(2).Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestHTTPFetcher_NotAFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>not a feed</body></html>")
	}))
	defer ts.Close()

	_, err := newTestFetcher(2).Fetch(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestFetcher(3).Fetch(ctx, ts.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", gofeed.HTTPError{StatusCode: 429}, true},
		{"500", gofeed.HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("x: %w", gofeed.HTTPError{StatusCode: 503}), true},
		{"404", gofeed.HTTPError{StatusCode: 404}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"canceled", context.Canceled, false},
		{"parse", gofeed.ErrFeedTypeNotDetected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(FetcherOptions{})
	assert.Equal(t, DefaultMaxRetries, f.maxRetries)
	assert.Equal(t, DefaultRetryInterval, f.retryInterval)
	assert.Equal(t, DefaultUserAgent, f.userAgent)
	assert.NotNil(t, f.client)

	assert.Zero(t, NewHTTPFetcher(FetcherOptions{MaxRetries: -1}).maxRetries)
}
