package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"media-aggregator/internal/aggregator"
	"media-aggregator/internal/feed"
	"media-aggregator/internal/media"
	"media-aggregator/internal/platform/config"
	"media-aggregator/internal/platform/metrics"
)

// app is the wired object graph shared by serve and fetch.
type app struct {
	reg     *media.Registry
	fetcher *feed.HTTPFetcher
	svc     *aggregator.Service
	metrics *metrics.Metrics
}

func newApp(s config.Settings, log *slog.Logger, met *metrics.Metrics) (*app, error) {
	reg, err := media.Load(s.MediaFile)
	if err != nil {
		return nil, fmt.Errorf("load media registry: %w", err)
	}

	fetcher := newFetcher(s)
	ing := feed.NewIngestor(fetcher, log, feed.Options{
		Concurrency:  s.FetchConcurrency,
		FetchTimeout: s.FetchTimeout,
	})
	limits := aggregator.Limits{Top: s.TopLimit, Bucket: s.BucketLimit, Sidebar: s.SidebarLimit}
	svc := aggregator.NewService(reg, aggregator.NewInMemoryRepository(), ing, limits, log, met)

	return &app{reg: reg, fetcher: fetcher, svc: svc, metrics: met}, nil
}

// newFetcher builds the HTTP fetcher. FETCH_RETRIES=0 disables retries.
func newFetcher(s config.Settings) *feed.HTTPFetcher {
	retries := s.FetchRetries
	if retries == 0 {
		retries = -1
	}
	return feed.NewHTTPFetcher(feed.FetcherOptions{
		Client:     &http.Client{},
		MaxRetries: retries,
	})
}
