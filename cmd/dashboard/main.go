package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadboard/lead-dashboard/internal/app"
	"github.com/leadboard/lead-dashboard/internal/backend"
	leadhttp "github.com/leadboard/lead-dashboard/internal/leads/http"
	"github.com/leadboard/lead-dashboard/internal/observability"
	"github.com/leadboard/lead-dashboard/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	client := backend.NewClient(cfg.APIBaseURL,
		backend.WithObserver(metrics),
		backend.WithFetchTimeout(cfg.AppRequestTimeout),
	)

	leadsHandler := leadhttp.NewHandler(
		logger,
		client,
		templates,
		app.BarRenderer{},
		app.LineRenderer{},
		app.PieRenderer{},
		leadhttp.Config{
			FetchLimit:      cfg.LeadsFetchLimit,
			UploadMaxMemory: cfg.UploadMaxMemory,
			UploadRateLimit: cfg.UploadRateLimit,
		},
	).WithObserver(metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		LeadsHandler: leadsHandler,
		Backend:      client,
		Metrics:      metrics,
	})

	if err := app.Serve(ctx, cfg, router, logger, 10*time.Second); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
