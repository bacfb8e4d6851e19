package aggregator

import (
	"sort"

	"media-aggregator/internal/feed"
	"media-aggregator/internal/media"

	"github.com/samber/lo"
)

// BucketFor maps a media orientation to its bucket. Orientations other than
// Gauche, Centre and Droite (including "") fall into OtherBucket.
func BucketFor(orientation string) Bucket {
	switch b := Bucket(orientation); b {
	case BucketGauche, BucketCentre, BucketDroite:
		return b
	default:
		return OtherBucket
	}
}

// BuildHomepageView merges every cached list into one newest-first sequence
// and derives the top list and the per-bucket lists from it. Ties keep the
// flatten order: media ids ascending, then each media's own order.
func BuildHomepageView(reg *media.Registry, snap *Snapshot, limits Limits) HomepageView {
	limits = limits.withDefaults()
	all := flatten(reg, snap)

	view := HomepageView{
		Top:      head(all, limits.Top),
		ByBucket: make(map[Bucket][]EnrichedVideo, len(Buckets)),
	}
	for _, b := range Buckets {
		inBucket := lo.Filter(all, func(v EnrichedVideo, _ int) bool {
			return BucketFor(v.Orientation) == b
		})
		view.ByBucket[b] = head(inBucket, limits.Bucket)
	}
	return view
}

// BuildSidebarView lists the registry ids in ascending order with the most
// recent videos of each.
func BuildSidebarView(reg *media.Registry, snap *Snapshot, limits Limits) SidebarView {
	limits = limits.withDefaults()
	ids := reg.IDs()
	if ids == nil {
		ids = []string{}
	}

	view := SidebarView{
		MediaIDs:      ids,
		RecentByMedia: make(map[string][]EnrichedVideo, len(ids)),
	}
	for _, id := range ids {
		view.RecentByMedia[id] = head(enrich(id, reg.Orientation(id), snap.Videos(id)), limits.Sidebar)
	}
	return view
}

// BuildMediaDetailView returns the descriptor and full list for id. Unknown
// ids get a descriptor of media.Unknown values and no videos.
func BuildMediaDetailView(reg *media.Registry, snap *Snapshot, id string) MediaDetailView {
	_, known := reg.Get(id)
	videos := snap.Videos(id)
	out := make([]feed.Video, len(videos))
	copy(out, videos)

	return MediaDetailView{
		Media:  reg.Lookup(id),
		Known:  known,
		Videos: out,
	}
}

func flatten(reg *media.Registry, snap *Snapshot) []EnrichedVideo {
	all := make([]EnrichedVideo, 0, snap.Count())
	for _, id := range snap.MediaIDs() {
		all = append(all, enrich(id, reg.Orientation(id), snap.Videos(id))...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	return all
}

func enrich(id, orientation string, videos []feed.Video) []EnrichedVideo {
	return lo.Map(videos, func(v feed.Video, _ int) EnrichedVideo {
		return EnrichedVideo{Video: v, MediaID: id, Orientation: orientation}
	})
}

// head returns a copy of the first n elements of s. The result is never nil.
func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
