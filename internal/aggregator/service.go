package aggregator

import (
	"context"
	"log/slog"
	"time"

	"media-aggregator/internal/feed"
	"media-aggregator/internal/media"
	"media-aggregator/internal/platform/metrics"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Ingestor produces a fresh set of per-media video lists.
type Ingestor interface {
	Refresh(ctx context.Context, reg *media.Registry) feed.Report
}

// Service refreshes the video snapshot and derives views from it. Every view
// method reads the published snapshot once, so a view never mixes two refreshes.
type Service struct {
	reg      *media.Registry
	repo     VideoRepository
	ingestor Ingestor
	limits   Limits
	log      *slog.Logger
	metrics  *metrics.Metrics

	refreshes singleflight.Group
}

// NewService wires a Service. Metrics may be nil to disable metric recording
// (e.g. in tests); non-positive limits fall back to the defaults.
func NewService(reg *media.Registry, repo VideoRepository, ingestor Ingestor, limits Limits, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		reg:      reg,
		repo:     repo,
		ingestor: ingestor,
		limits:   limits.withDefaults(),
		log:      log,
		metrics:  m,
	}
}

// Registry returns the media registry the service was built with.
func (s *Service) Registry() *media.Registry {
	return s.reg
}

// Refresh re-fetches every feed and publishes the result as a new snapshot.
// Concurrent callers share a single in-flight refresh. The refresh itself is
// detached from ctx: a caller that gives up gets ctx.Err(), but the refresh
// still completes and is published, bounded by the per-source fetch timeout.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.refreshes.DoChan(refreshKey, func() (any, error) {
		return s.refresh(detached), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) refresh(ctx context.Context) *Snapshot {
	report := s.ingestor.Refresh(ctx, s.reg)
	if report.StartedAt.IsZero() {
		report.StartedAt = time.Now().UTC()
	}
	snap := NewSnapshot(report.Videos, report.StartedAt, report.Failed)
	s.repo.Replace(snap)

	if s.metrics != nil {
		s.metrics.ObserveRefresh(report.Duration, report.StartedAt, snap.Failed())
		s.metrics.SetVideoCounts(snap.Counts())
	}
	s.log.Info("snapshot published",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("videos", snap.Count()),
		slog.Any("failed", snap.Failed()))
	return snap
}

// Current returns the published snapshot.
func (s *Service) Current() *Snapshot {
	return s.repo.Current()
}

// Homepage returns the top and per-bucket lists.
func (s *Service) Homepage() HomepageView {
	return BuildHomepageView(s.reg, s.repo.Current(), s.limits)
}

// Sidebar returns the alphabetical media list with recent videos.
func (s *Service) Sidebar() SidebarView {
	return BuildSidebarView(s.reg, s.repo.Current(), s.limits)
}

// MediaDetail returns the detail view for id. Unknown ids are not an error.
func (s *Service) MediaDetail(id string) MediaDetailView {
	return BuildMediaDetailView(s.reg, s.repo.Current(), id)
}

// HomePage builds the homepage and sidebar from one snapshot.
func (s *Service) HomePage() HomePage {
	snap := s.repo.Current()
	return HomePage{
		Home:    BuildHomepageView(s.reg, snap, s.limits),
		Sidebar: BuildSidebarView(s.reg, snap, s.limits),
		Status:  snap.Info(),
	}
}

// MediaPage builds the detail view and sidebar from one snapshot.
func (s *Service) MediaPage(id string) MediaPage {
	snap := s.repo.Current()
	return MediaPage{
		Detail:  BuildMediaDetailView(s.reg, snap, id),
		Sidebar: BuildSidebarView(s.reg, snap, s.limits),
		Status:  snap.Info(),
		Failure: snap.FailureReason(id),
	}
}
