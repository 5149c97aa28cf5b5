package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	leadhttp "github.com/leadboard/lead-dashboard/internal/leads/http"
	"github.com/leadboard/lead-dashboard/internal/observability"
	"github.com/leadboard/lead-dashboard/internal/platform/httpx"
	"github.com/leadboard/lead-dashboard/web"
)

// Pinger reports whether the lead service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	LeadsHandler *leadhttp.Handler
	Backend      Pinger
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", healthHandler(params.Backend, logger))

	if params.LeadsHandler != nil {
		params.LeadsHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

type healthStatus struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

// healthHandler answers liveness probes; ?deep=1 also pings the lead service.
func healthHandler(backend Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("deep") != "1" || backend == nil {
			httpx.JSON(w, http.StatusOK, healthStatus{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := backend.Ping(ctx); err != nil {
			logger.Warn("lead service ping failed", slog.Any("error", err))
			httpx.JSON(w, http.StatusServiceUnavailable, healthStatus{Status: "degraded", Backend: backend.BaseURL(), Error: "unreachable"})
			return
		}
		httpx.JSON(w, http.StatusOK, healthStatus{Status: "ok", Backend: backend.BaseURL()})
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
