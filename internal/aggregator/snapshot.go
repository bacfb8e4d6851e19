package aggregator

import (
	"sort"
	"time"

	"media-aggregator/internal/feed"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Snapshot is one refresh's worth of videos, keyed by media id, each list
// newest first. A Snapshot is never modified after NewSnapshot returns; a
// refresh builds a new one and swaps it in whole.
type Snapshot struct {
	ID          uuid.UUID
	RefreshedAt time.Time

	videos map[string][]feed.Video
	ids    []string
	failed map[string]string
}

// NewSnapshot copies videos and failure reasons into a new Snapshot.
func NewSnapshot(videos map[string][]feed.Video, refreshedAt time.Time, failed map[string]error) *Snapshot {
	s := &Snapshot{
		ID:          uuid.New(),
		RefreshedAt: refreshedAt,
		videos:      make(map[string][]feed.Video, len(videos)),
		failed:      make(map[string]string, len(failed)),
	}
	for id, list := range videos {
		cp := make([]feed.Video, len(list))
		copy(cp, list)
		s.videos[id] = cp
	}
	for id, err := range failed {
		reason := "unknown error"
		if err != nil {
			reason = err.Error()
		}
		s.failed[id] = reason
	}
	s.ids = lo.Keys(s.videos)
	sort.Strings(s.ids)
	return s
}

// EmptySnapshot is the state before the first refresh.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, time.Time{}, nil)
}

// Videos returns the cached list for id, newest first. Callers must not
// modify the returned slice.
func (s *Snapshot) Videos(id string) []feed.Video {
	return s.videos[id]
}

// MediaIDs returns the cached media ids in ascending order.
func (s *Snapshot) MediaIDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Count returns the total number of cached videos.
func (s *Snapshot) Count() int {
	return lo.SumBy(lo.Values(s.videos), func(list []feed.Video) int { return len(list) })
}

// Counts returns the number of cached videos per media.
func (s *Snapshot) Counts() map[string]int {
	return lo.MapValues(s.videos, func(list []feed.Video, _ string) int { return len(list) })
}

// Failed returns the ids whose fetch failed during this refresh, sorted.
func (s *Snapshot) Failed() []string {
	ids := lo.Keys(s.failed)
	sort.Strings(ids)
	return ids
}

// FailureReason returns why id produced no videos, or "" if it did not fail.
func (s *Snapshot) FailureReason(id string) string {
	return s.failed[id]
}

// Info summarizes the snapshot.
func (s *Snapshot) Info() RefreshInfo {
	return RefreshInfo{
		ID:          s.ID.String(),
		RefreshedAt: s.RefreshedAt,
		Media:       len(s.ids),
		Videos:      s.Count(),
		Failed:      s.Failed(),
	}
}
