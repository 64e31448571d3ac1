package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"orders-dashboard/internal/models"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/services"
	"orders-dashboard/internal/ui/templates"
)

const (
	pageTitle     = "AdventureWorks - Pedidos"
	renderTimeout = 10 * time.Second
)

type PageHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{dashboard: dashboard, logger: logger}
}

// HandleDashboard renders the page with the unfiltered indicators and the
// date picker preset to the dataset's extent.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	result, err := h.dashboard.Apply(ctx, models.FilterSpec{})
	if err != nil {
		observability.LoggerFrom(ctx, h.logger).Error("compute initial dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	opts := h.dashboard.Options()
	page := templates.Page{
		Title:    pageTitle,
		Regions:  opts.Regions,
		Products: opts.Products,
		MinDate:  dateOrEmpty(opts.MinDate),
		MaxDate:  dateOrEmpty(opts.MaxDate),
		KPIs:     kpiView(result.KPIs),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(page).Render(ctx, w); err != nil {
		observability.LoggerFrom(ctx, h.logger).Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
