package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"media-aggregator/internal/media"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency  = 8
	DefaultFetchTimeout = 15 * time.Second
)

// FallbackToIngestionTime is the publication-time policy for entries whose
// feed carries no date: they take the time of the refresh that ingested them,
// so they sort as the most recent items.
func FallbackToIngestionTime(ingestedAt time.Time) time.Time {
	return ingestedAt
}

// Report is the outcome of one refresh pass.
type Report struct {
	// Videos holds one list per registered media, newest first. Media without
	// a feed or whose fetch failed map to an empty list.
	Videos map[string][]Video
	// Failed maps media ids to the error that emptied their list.
	Failed    map[string]error
	StartedAt time.Time
	Duration  time.Duration
}

// Count returns the total number of ingested videos.
func (r Report) Count() int {
	n := 0
	for _, v := range r.Videos {
		n += len(v)
	}
	return n
}

// Options tunes an Ingestor. Zero values select the defaults.
type Options struct {
	// Concurrency bounds how many feeds are fetched at once.
	Concurrency int
	// FetchTimeout bounds each media's fetch, retries included.
	FetchTimeout time.Duration
}

// Ingestor fetches every registered feed and normalizes its entries.
type Ingestor struct {
	fetcher     Fetcher
	log         *slog.Logger
	concurrency int
	timeout     time.Duration

	// Now supplies the ingestion time. Defaults to time.Now.
	Now func() time.Time
}

// NewIngestor returns an Ingestor reading feeds through fetcher.
func NewIngestor(fetcher Fetcher, log *slog.Logger, opts Options) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	in := &Ingestor{
		fetcher:     fetcher,
		log:         log,
		concurrency: opts.Concurrency,
		timeout:     opts.FetchTimeout,
		Now:         time.Now,
	}
	if in.concurrency <= 0 {
		in.concurrency = DefaultConcurrency
	}
	if in.timeout <= 0 {
		in.timeout = DefaultFetchTimeout
	}
	return in
}

// RefreshAll fetches every feed in reg and returns the per-media video lists.
func (in *Ingestor) RefreshAll(ctx context.Context, reg *media.Registry) map[string][]Video {
	return in.Refresh(ctx, reg).Videos
}

// Refresh fetches every feed in reg. A failing media never aborts the pass:
// its error is logged, recorded in Report.Failed and its list is left empty.
func (in *Ingestor) Refresh(ctx context.Context, reg *media.Registry) Report {
	started := time.Now()
	ingestedAt := in.Now().UTC()

	ids := reg.IDs()
	lists := make([][]Video, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(in.concurrency)
	for i, id := range ids {
		m, _ := reg.Get(id)
		if !m.HasFeed() {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("ingest %s: panic: %v", id, r)
				}
			}()
			lists[i], errs[i] = in.fetchMedia(ctx, m, ingestedAt)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Videos:    make(map[string][]Video, len(ids)),
		Failed:    make(map[string]error),
		StartedAt: ingestedAt,
	}
	for i, id := range ids {
		if errs[i] != nil {
			in.log.Warn("feed fetch failed",
				slog.String("media", id),
				slog.String("error", errs[i].Error()))
			report.Failed[id] = errs[i]
			report.Videos[id] = []Video{}
			continue
		}
		if lists[i] == nil {
			lists[i] = []Video{}
		}
		report.Videos[id] = lists[i]
	}
	report.Duration = time.Since(started)

	in.log.Info("feeds refreshed",
		slog.Int("media", len(ids)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("videos", report.Count()),
		slog.Int64("duration_ms", report.Duration.Milliseconds()))

	return report
}

func (in *Ingestor) fetchMedia(ctx context.Context, m media.Media, ingestedAt time.Time) ([]Video, error) {
	ctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	f, err := in.fetcher.Fetch(ctx, m.FeedURL)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("empty feed")
	}
	return VideosFromFeed(f, ingestedAt), nil
}

// VideosFromFeed normalizes feed entries, newest first. Entries without a
// publication or update time take FallbackToIngestionTime(ingestedAt).
func VideosFromFeed(f *gofeed.Feed, ingestedAt time.Time) []Video {
	videos := make([]Video, 0, len(f.Items))
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		videos = append(videos, Video{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: itemPublishedTime(item, ingestedAt),
			Thumbnail:   ThumbnailURL(item.Link),
			Author:      itemAuthor(item),
			Description: itemDescription(item),
		})
	}
	SortByRecency(videos)
	return videos
}

func itemPublishedTime(item *gofeed.Item, ingestedAt time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return FallbackToIngestionTime(ingestedAt)
}
