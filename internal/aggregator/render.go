package aggregator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageHome  = "index.html"
	pageMedia = "media.html"

	dateLayout = "02/01/2006 15:04"
)

// frMagnitudes is humanize.defaultMagnitudes with French labels.
var frMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "à l'instant", DivBy: time.Second},
	{D: 2 * time.Second, Format: "%s 1 seconde", DivBy: 1},
	{D: time.Minute, Format: "%s %d secondes", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s 1 minute", DivBy: 1},
	{D: time.Hour, Format: "%s %d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s 1 heure", DivBy: 1},
	{D: humanize.Day, Format: "%s %d heures", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s 1 jour", DivBy: 1},
	{D: humanize.Week, Format: "%s %d jours", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s 1 semaine", DivBy: 1},
	{D: humanize.Month, Format: "%s %d semaines", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s 1 mois", DivBy: 1},
	{D: humanize.Year, Format: "%s %d mois", DivBy: humanize.Month},
	{D: 18 * humanize.Month, Format: "%s 1 an", DivBy: 1},
	{D: 2 * humanize.Year, Format: "%s 2 ans", DivBy: 1},
	{D: humanize.LongTime, Format: "%s %d ans", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "%s longtemps", DivBy: 1},
}

// Renderer executes the embedded page templates. Each page is parsed
// together with the shared layout into its own set.
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer parses every page template. It fails only if the embedded
// templates are broken.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template, 2),
		now:   time.Now,
	}
	for _, page := range []string{pageHome, pageMedia} {
		t, err := template.New(page).
			Funcs(r.funcs()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page into w. Output is buffered so a failing template
// writes nothing.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"mediaPath": MediaPath,
		"date":      FormatDate,
		"iso": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"ago": func(t time.Time) string {
			return humanize.CustomRelTime(t, r.now(), "il y a", "dans", frMagnitudes)
		},
		"truncate": truncate,
		"buckets": func() []Bucket {
			return Buckets
		},
	}
}

// StaticFS returns the embedded stylesheet directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// MediaPath is the detail page path for a media id.
func MediaPath(id string) string {
	return "/media/" + url.PathEscape(id)
}

// FormatDate renders t as "dd/mm/yyyy hh:mm" in UTC.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
