package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	watchMarker       = "watch?v="
	thumbnailTemplate = "https://img.youtube.com/vi/%s/hqdefault.jpg"
)

// Video is one normalized feed entry. Videos are rebuilt on every refresh and
// never mutated after ingestion.
type Video struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
}

// HasThumbnail reports whether a thumbnail could be derived from the link.
func (v Video) HasThumbnail() bool {
	return v.Thumbnail != ""
}

// VideoID extracts the id from a "watch?v=<id>" link. The id ends at the first
// '&' or '#'. It returns "" when the link carries no such segment.
func VideoID(link string) string {
	i := strings.Index(link, watchMarker)
	if i < 0 {
		return ""
	}
	id := link[i+len(watchMarker):]
	if j := strings.IndexAny(id, "&#"); j >= 0 {
		id = id[:j]
	}
	return id
}

// ThumbnailURL returns the hqdefault thumbnail for a watch link, or "" when no
// video id can be extracted.
func ThumbnailURL(link string) string {
	id := VideoID(link)
	if id == "" {
		return ""
	}
	return fmt.Sprintf(thumbnailTemplate, id)
}

// SortByRecency orders videos newest first. Entries with equal timestamps keep
// their relative order.
func SortByRecency(videos []Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
}
