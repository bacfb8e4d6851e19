package aggregator

import (
	"log/slog"
	"net/http"

	"media-aggregator/internal/platform/logger"
	"media-aggregator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every aggregator route. met may be nil, in which case
// request metrics and /metrics are not served.
func NewRouter(h *Handler, log *slog.Logger, met *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	if met != nil {
		r.Use(metrics.RequestMiddleware(met))
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			met.Handler(func() { met.SetVideoCounts(h.svc.Current().Counts()) }).ServeHTTP(w, r)
		})
	}

	r.Get("/", h.Home)
	r.Get("/media/{mediaID}", h.Media)
	r.Get("/refresh", h.Refresh)
	r.Get("/healthz", h.Healthz)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(StaticFS())))

	r.Route("/api", func(r chi.Router) {
		r.Get("/homepage", h.APIHomepage)
		r.Get("/sidebar", h.APISidebar)
		r.Get("/media/{mediaID}", h.APIMedia)
		r.Post("/refresh", h.APIRefresh)
	})
	return r
}
