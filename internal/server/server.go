package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orders-dashboard/internal/errors"
	"orders-dashboard/internal/handlers"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	router      chi.Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:   dashboard,
		router:      chi.NewRouter(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, s.logger, errors.NotFound("Route not found"), observability.GetRequestID(r.Context()))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, s.logger, errors.MethodNotAllowed("Method not allowed"), observability.GetRequestID(r.Context()))
	})

	s.router.Get("/", templateHandlers.Dashboard)
	s.router.Get("/health", s.apiHandlers.HandleHealth)
	s.router.Get("/admin/stats", s.apiHandlers.HandleStats)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/options", s.apiHandlers.HandleOptions)
		r.Get("/dashboard", s.apiHandlers.HandleDashboard)
		r.Get("/kpis", s.apiHandlers.HandleKPIs)
		r.Get("/top-regions", s.apiHandlers.HandleTopRegions)
		r.Get("/top-products", s.apiHandlers.HandleTopProducts)
		r.Get("/monthly-sales", s.apiHandlers.HandleMonthlySales)
		r.Get("/export.csv", s.apiHandlers.HandleExportCSV)
	})

	s.router.Get("/sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
