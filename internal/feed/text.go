package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// itemDescription prefers the YouTube media:group description and falls back
// to the generic item description.
func itemDescription(item *gofeed.Item) string {
	if groups := item.Extensions["media"]["group"]; len(groups) > 0 {
		if desc := groups[0].Children["description"]; len(desc) > 0 && desc[0].Value != "" {
			return plainText(desc[0].Value)
		}
	}
	return plainText(item.Description)
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	return ""
}

// plainText strips markup and decodes entities.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
