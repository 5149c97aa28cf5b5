package leadhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/leadboard/lead-dashboard/internal/platform/httpx"
)

// MountRoutes registers the dashboard pages onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	uploadLimiter := newLimiter(h.cfg.UploadRateLimit, "upload")
	exportLimiter := newLimiter(h.cfg.UploadRateLimit, "export")

	r.Get("/", h.handleIndex)
	r.Get("/charts", h.handleCharts)
	r.Get("/charts/{file}", h.handleChartDownload)
	r.Get("/table", h.handleTable)
	r.Get("/scoring", h.handleScoring)
	r.Get("/upload", h.handleUploadForm)
	r.Get("/api/leads/summary", h.handleSummary)
	r.With(uploadLimiter).Post("/upload", h.handleUpload)
	r.Group(func(gr chi.Router) {
		gr.Use(exportLimiter)
		gr.Get("/table/export.csv", h.handleCSV)
		gr.Get("/table/export.xlsx", h.handleXLSX)
	})
}

// newLimiter builds a per-IP limiter whose counters are kept apart from
// every other limiter by scope.
func newLimiter(perMinute int, scope string) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			key, err := httprate.KeyByIP(r)
			if err != nil {
				return "", err
			}
			return scope + ":ip:" + key, nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "try again in a minute")
		}),
	)
}
