package aggregator

import (
	"fmt"
	"testing"
	"time"

	"media-aggregator/internal/feed"
	"media-aggregator/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func video(title string, hour int) feed.Video {
	link := "https://www.youtube.com/watch?v=" + title
	return feed.Video{
		Title:       title,
		Link:        link,
		PublishedAt: base.Add(time.Duration(hour) * time.Hour),
		Thumbnail:   feed.ThumbnailURL(link),
	}
}

// videos returns n videos for prefix, newest first, published at hours n..1.
func videos(prefix string, n int) []feed.Video {
	out := make([]feed.Video, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, video(fmt.Sprintf("%s%d", prefix, i), i))
	}
	return out
}

func enrichedTitles(list []EnrichedVideo) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.Title
	}
	return out
}

func scenarioRegistry() *media.Registry {
	return media.New(
		media.Media{ID: "A", FeedURL: "https://example.test/a", Orientation: "Gauche", Leader: "Alice"},
		media.Media{ID: "B", Orientation: "Droite"},
	)
}

func TestBucketFor(t *testing.T) {
	cases := map[string]Bucket{
		"Gauche":  BucketGauche,
		"Centre":  BucketCentre,
		"Droite":  BucketDroite,
		"Autres":  OtherBucket,
		"":        OtherBucket,
		"gauche":  OtherBucket,
		"Extrême": OtherBucket,
		"Centre ": OtherBucket,
	}
	for orientation, want := range cases {
		assert.Equal(t, want, BucketFor(orientation), "orientation %q", orientation)
	}
}

func TestBuildHomepageView_Scenario(t *testing.T) {
	snap := NewSnapshot(map[string][]feed.Video{
		"A": {video("v3", 3), video("v2", 2), video("v1", 1)},
		"B": {},
	}, base, nil)

	view := BuildHomepageView(scenarioRegistry(), snap, DefaultLimits())

	assert.Equal(t, []string{"v3", "v2", "v1"}, enrichedTitles(view.Top))
	require.Len(t, view.ByBucket, len(Buckets))
	assert.Equal(t, []string{"v3", "v2", "v1"}, enrichedTitles(view.ByBucket[BucketGauche]))
	for _, b := range []Bucket{BucketCentre, BucketDroite, OtherBucket} {
		assert.NotNil(t, view.ByBucket[b], "bucket %s", b)
		assert.Empty(t, view.ByBucket[b], "bucket %s", b)
	}
	assert.Equal(t, "A", view.Top[0].MediaID)
	assert.Equal(t, "Gauche", view.Top[0].Orientation)
}

func TestBuildHomepageView_TopIsTwelveMostRecent(t *testing.T) {
	reg := media.New(
		media.Media{ID: "A", Orientation: "Gauche"},
		media.Media{ID: "B", Orientation: "Droite"},
	)
	a := make([]feed.Video, 0, 10)
	b := make([]feed.Video, 0, 10)
	for i := 20; i >= 1; i-- {
		v := video(fmt.Sprintf("h%02d", i), i)
		if i%2 == 0 {
			a = append(a, v)
		} else {
			b = append(b, v)
		}
	}
	snap := NewSnapshot(map[string][]feed.Video{"A": a, "B": b}, base, nil)

	view := BuildHomepageView(reg, snap, DefaultLimits())

	require.Len(t, view.Top, DefaultTopLimit)
	for i, v := range view.Top {
		assert.Equal(t, fmt.Sprintf("h%02d", 20-i), v.Title)
	}
	assert.Len(t, view.ByBucket[BucketGauche], DefaultBucketLimit)
	assert.Len(t, view.ByBucket[BucketDroite], DefaultBucketLimit)
}

func TestBuildHomepageView_BucketLimitAndOrder(t *testing.T) {
	reg := media.New(
		media.Media{ID: "C1", Orientation: "Centre"},
		media.Media{ID: "C2", Orientation: "Centre"},
	)
	snap := NewSnapshot(map[string][]feed.Video{
		"C1": videos("x", 8),
		"C2": {video("y9", 9), video("y0", 0)},
	}, base, nil)

	view := BuildHomepageView(reg, snap, DefaultLimits())

	centre := view.ByBucket[BucketCentre]
	require.Len(t, centre, DefaultBucketLimit)
	assert.Equal(t, "y9", centre[0].Title)
	assert.Equal(t, "y0", centre[len(centre)-1].Title)
	for i := 1; i < len(centre); i++ {
		assert.False(t, centre[i].PublishedAt.After(centre[i-1].PublishedAt))
	}
}

func TestBuildHomepageView_UnknownOrientationGoesToAutres(t *testing.T) {
	reg := media.New(
		media.Media{ID: "E", Orientation: "Extrême"},
		media.Media{ID: "N"},
	)
	snap := NewSnapshot(map[string][]feed.Video{
		"E":     {video("e1", 1)},
		"N":     {video("n2", 2)},
		"ghost": {video("g3", 3)},
	}, base, nil)

	view := BuildHomepageView(reg, snap, DefaultLimits())

	assert.Equal(t, []string{"g3", "n2", "e1"}, enrichedTitles(view.ByBucket[OtherBucket]))
	assert.Empty(t, view.ByBucket[BucketGauche])
	assert.Empty(t, view.ByBucket[BucketCentre])
	assert.Empty(t, view.ByBucket[BucketDroite])
}

func TestBuildHomepageView_TiesKeepMediaOrder(t *testing.T) {
	reg := media.New(
		media.Media{ID: "b", Orientation: "Gauche"},
		media.Media{ID: "a", Orientation: "Gauche"},
	)
	snap := NewSnapshot(map[string][]feed.Video{
		"b": {video("b-first", 1), video("b-second", 1)},
		"a": {video("a-only", 1)},
	}, base, nil)

	view := BuildHomepageView(reg, snap, DefaultLimits())

	assert.Equal(t, []string{"a-only", "b-first", "b-second"}, enrichedTitles(view.Top))
}

func TestBuildHomepageView_CustomAndInvalidLimits(t *testing.T) {
	reg := media.New(media.Media{ID: "A", Orientation: "Gauche"})
	snap := NewSnapshot(map[string][]feed.Video{"A": videos("v", 15)}, base, nil)

	view := BuildHomepageView(reg, snap, Limits{Top: 3, Bucket: 2})
	assert.Len(t, view.Top, 3)
	assert.Len(t, view.ByBucket[BucketGauche], 2)

	view = BuildHomepageView(reg, snap, Limits{Top: -1, Bucket: 0})
	assert.Len(t, view.Top, DefaultTopLimit)
	assert.Len(t, view.ByBucket[BucketGauche], DefaultBucketLimit)
}

func TestBuildHomepageView_EmptySnapshot(t *testing.T) {
	view := BuildHomepageView(scenarioRegistry(), EmptySnapshot(), DefaultLimits())

	assert.NotNil(t, view.Top)
	assert.Empty(t, view.Top)
	for _, b := range Buckets {
		assert.NotNil(t, view.ByBucket[b])
	}
}

func TestBuildHomepageView_DoesNotAliasSnapshot(t *testing.T) {
	reg := media.New(media.Media{ID: "A", Orientation: "Gauche"})
	snap := NewSnapshot(map[string][]feed.Video{"A": videos("v", 2)}, base, nil)

	view := BuildHomepageView(reg, snap, DefaultLimits())
	view.Top[0].Title = "changed"

	assert.Equal(t, "v2", snap.Videos("A")[0].Title)
}

func TestBuildSidebarView(t *testing.T) {
	reg := media.New(
		media.Media{ID: "Zeta", Orientation: "Centre"},
		media.Media{ID: "Alpha", Orientation: "Gauche"},
		media.Media{ID: "Mu"},
	)
	snap := NewSnapshot(map[string][]feed.Video{
		"Zeta":  videos("z", 7),
		"Alpha": videos("a", 2),
	}, base, nil)

	view := BuildSidebarView(reg, snap, DefaultLimits())

	assert.Equal(t, []string{"Alpha", "Mu", "Zeta"}, view.MediaIDs)
	assert.Equal(t, []string{"a2", "a1"}, enrichedTitles(view.RecentByMedia["Alpha"]))
	assert.Equal(t, []string{"z7", "z6", "z5", "z4", "z3"}, enrichedTitles(view.RecentByMedia["Zeta"]))
	assert.NotNil(t, view.RecentByMedia["Mu"])
	assert.Empty(t, view.RecentByMedia["Mu"])
	assert.Equal(t, "Centre", view.RecentByMedia["Zeta"][0].Orientation)
}

func TestBuildSidebarView_Scenario(t *testing.T) {
	snap := NewSnapshot(map[string][]feed.Video{
		"A": {video("v3", 3), video("v2", 2), video("v1", 1)},
		"B": {},
	}, base, nil)

	view := BuildSidebarView(scenarioRegistry(), snap, DefaultLimits())

	assert.Equal(t, []string{"A", "B"}, view.MediaIDs)
	assert.Equal(t, []string{"v3", "v2", "v1"}, enrichedTitles(view.RecentByMedia["A"]))
	assert.Empty(t, view.RecentByMedia["B"])
}

func TestBuildSidebarView_EmptyRegistry(t *testing.T) {
	view := BuildSidebarView(nil, EmptySnapshot(), DefaultLimits())
	assert.NotNil(t, view.MediaIDs)
	assert.Empty(t, view.MediaIDs)
}

func TestBuildMediaDetailView(t *testing.T) {
	snap := NewSnapshot(map[string][]feed.Video{
		"A": {video("v3", 3), video("v2", 2), video("v1", 1)},
	}, base, nil)

	view := BuildMediaDetailView(scenarioRegistry(), snap, "A")

	assert.True(t, view.Known)
	assert.Equal(t, "Gauche", view.Media.Orientation)
	assert.Equal(t, "Alice", view.Media.Leader)
	require.Len(t, view.Videos, 3)
	assert.Equal(t, "v3", view.Videos[0].Title)

	view.Videos[0].Title = "changed"
	assert.Equal(t, "v3", snap.Videos("A")[0].Title)
}

func TestBuildMediaDetailView_Unknown(t *testing.T) {
	view := BuildMediaDetailView(scenarioRegistry(), EmptySnapshot(), "Unknown")

	assert.False(t, view.Known)
	assert.Equal(t, "Unknown", view.Media.ID)
	assert.Equal(t, media.Unknown, view.Media.Orientation)
	assert.Equal(t, media.Unknown, view.Media.Leader)
	assert.Equal(t, media.Unknown, view.Media.Description)
	assert.Equal(t, media.Unknown, view.Media.EconomicInterests)
	assert.NotNil(t, view.Videos)
	assert.Empty(t, view.Videos)
}
