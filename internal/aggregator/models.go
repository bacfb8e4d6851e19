package aggregator

import (
	"time"

	"media-aggregator/internal/feed"
	"media-aggregator/internal/media"
)

// Bucket groups videos by the orientation of their media.
type Bucket string

const (
	BucketGauche Bucket = "Gauche"
	BucketCentre Bucket = "Centre"
	BucketDroite Bucket = "Droite"

	// OtherBucket receives every orientation that is not one of the named buckets.
	OtherBucket Bucket = "Autres"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{BucketGauche, BucketCentre, BucketDroite, OtherBucket}

// EnrichedVideo is a video tagged with the media it came from.
type EnrichedVideo struct {
	feed.Video
	MediaID     string `json:"media_id"`
	Orientation string `json:"orientation"`
}

// HomepageView is the most recent videos overall and per bucket.
type HomepageView struct {
	Top      []EnrichedVideo            `json:"top"`
	ByBucket map[Bucket][]EnrichedVideo `json:"by_bucket"`
}

// SidebarView lists every media with its latest videos.
type SidebarView struct {
	MediaIDs      []string                   `json:"media_ids"`
	RecentByMedia map[string][]EnrichedVideo `json:"recent_by_media"`
}

// MediaDetailView is a single media with its full video list.
type MediaDetailView struct {
	Media  media.Media  `json:"media"`
	Known  bool         `json:"known"`
	Videos []feed.Video `json:"videos"`
}

// RefreshInfo summarizes the snapshot a view was built from.
type RefreshInfo struct {
	ID          string    `json:"id"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Media       int       `json:"media"`
	Videos      int       `json:"videos"`
	Failed      []string  `json:"failed"`
}

// Refreshed reports whether the snapshot came from an actual refresh.
func (i RefreshInfo) Refreshed() bool {
	return !i.RefreshedAt.IsZero()
}

// HomePage is everything the homepage template renders.
type HomePage struct {
	Home    HomepageView
	Sidebar SidebarView
	Status  RefreshInfo
}

// MediaPage is everything the media detail template renders.
type MediaPage struct {
	Detail  MediaDetailView
	Sidebar SidebarView
	Status  RefreshInfo
	// Failure is why the media's last fetch failed, or "".
	Failure string
}

// Limits caps the size of derived lists.
type Limits struct {
	Top     int
	Bucket  int
	Sidebar int
}

const (
	DefaultTopLimit     = 12
	DefaultBucketLimit  = 10
	DefaultSidebarLimit = 5
)

// DefaultLimits returns the standard list sizes.
func DefaultLimits() Limits {
	return Limits{Top: DefaultTopLimit, Bucket: DefaultBucketLimit, Sidebar: DefaultSidebarLimit}
}

func (l Limits) withDefaults() Limits {
	if l.Top <= 0 {
		l.Top = DefaultTopLimit
	}
	if l.Bucket <= 0 {
		l.Bucket = DefaultBucketLimit
	}
	if l.Sidebar <= 0 {
		l.Sidebar = DefaultSidebarLimit
	}
	return l
}
