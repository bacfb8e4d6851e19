package aggregator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"media-aggregator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	jsonContentType = "application/json"
)

// Handler exposes the aggregator pages and JSON API using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
	views   *Renderer
}

// NewHandler returns a Handler that uses the given Service, Renderer, Logger,
// and optional Metrics. Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, views *Renderer, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, views: views, log: log, metrics: m}
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageHome, h.svc.HomePage())
}

// Media handles GET /media/{mediaID}. Unknown ids render the placeholder
// descriptor with status 200.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageMedia, h.svc.MediaPage(mediaIDParam(r)))
}

// Refresh handles GET /refresh: it refreshes every feed, then redirects home.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.refresh(w, r); !ok {
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// APIHomepage handles GET /api/homepage.
func (h *Handler) APIHomepage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Homepage())
}

// APISidebar handles GET /api/sidebar.
func (h *Handler) APISidebar(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Sidebar())
}

// APIMedia handles GET /api/media/{mediaID}.
func (h *Handler) APIMedia(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.MediaDetail(mediaIDParam(r)))
}

// APIRefresh handles POST /api/refresh and returns a summary of the new snapshot.
func (h *Handler) APIRefresh(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.refresh(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Info())
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	snap, err := h.svc.Refresh(r.Context())
	if err != nil {
		// Only the caller's context can fail a refresh; the refresh itself
		// carries on and is published.
		h.log.Warn("refresh abandoned by client", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return nil, false
	}
	h.log.Info("refresh requested",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("videos", snap.Count()))
	return snap, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", htmlContentType)
	if err := h.views.Render(w, page, data); err != nil {
		h.log.Error("render failed",
			slog.String("page", page),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
	}
}

// mediaIDParam returns the decoded {mediaID} path segment. chi matches on the
// escaped path when RawPath is set, so the param may still be percent-encoded.
func mediaIDParam(r *http.Request) string {
	id := chi.URLParam(r, "mediaID")
	if r.URL.RawPath == "" {
		return id
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}
