package server

import (
	"log/slog"
	"net/http"

	"product-dashboard/internal/handlers"
	"product-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, loader handlers.Refresher, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, loader, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, loader, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Loader control
	s.mux.HandleFunc("GET /api/status", s.apiHandlers.HandleStatus)
	s.mux.HandleFunc("POST /api/refresh", s.apiHandlers.HandleRefresh)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/tags", s.apiHandlers.HandleTags)
	s.mux.HandleFunc("GET /api/colors", s.apiHandlers.HandleColors)
	s.mux.HandleFunc("GET /api/sizes", s.apiHandlers.HandleSizes)
	s.mux.HandleFunc("GET /api/sales", s.apiHandlers.HandleSales)
	s.mux.HandleFunc("GET /api/insights", s.apiHandlers.HandleInsights)
	s.mux.HandleFunc("GET /api/top", s.apiHandlers.HandleTop)
	s.mux.HandleFunc("GET /api/correlation", s.apiHandlers.HandleCorrelation)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProducts)
	s.mux.HandleFunc("GET /api/products/{id}", s.apiHandlers.HandleProduct)
	s.mux.HandleFunc("GET /api/export", s.apiHandlers.HandleExport)
	s.mux.HandleFunc("GET /api/export/categories", s.apiHandlers.HandleCategoryReport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/status", s.sseHandlers.HandleStatus)
	s.mux.HandleFunc("GET /sse/summary", s.sseHandlers.HandleSummary)
	s.mux.HandleFunc("GET /sse/categories", s.sseHandlers.HandleCategories)
	s.mux.HandleFunc("GET /sse/insights", s.sseHandlers.HandleInsights)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
