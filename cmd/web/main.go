package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"product-dashboard/internal/config"
	"product-dashboard/internal/handlers"
	"product-dashboard/internal/middleware"
	"product-dashboard/internal/observability"
	"product-dashboard/internal/server"
	"product-dashboard/internal/services"
	"product-dashboard/internal/source"
	"product-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheNoStore  = "no-cache"
	sweepSchedule = "@every 1m"
)

// dashboardHandler renders the page shell with the current load status so
// the first paint already shows the spinner or retry banner.
func dashboardHandler(loader handlers.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheNoStore)
		if err := templates.Dashboard(loader.Status()).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"source", cfg.Source.Kind,
		"refresh", cfg.Refresh.Schedule,
	)

	analytics := services.NewAnalytics(cfg.Insights.Thresholds())
	analytics.SetLogger(logger)

	src, err := source.FromConfig(cfg.Source)
	if err != nil {
		logger.Error("failed to build product source", "error", err)
		os.Exit(1)
	}
	loader := source.NewLoader(src, analytics, source.OptionsFromConfig(cfg.Refresh, cfg.Source.Timeout), logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	if err := loader.AddJob(sweepSchedule, func() {
		logger.Debug("rate limiter swept idle visitors", "remaining", rateLimiter.Sweep(time.Now()))
	}); err != nil {
		logger.Error("failed to schedule rate limiter sweep", "error", err)
		os.Exit(1)
	}

	// Data arrives in the background; until then the API answers 503 and
	// the page shows a spinner.
	if err := loader.Start(); err != nil {
		logger.Error("failed to start loader", "error", err)
		os.Exit(1)
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(loader),
	}

	srv := server.NewServer(analytics, loader, logger, templateHandlers)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("loader", func(ctx context.Context) error {
		logger.Info("stopping product loader")
		return loader.Stop(ctx)
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
