package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"orders-dashboard/internal/errors"
	"orders-dashboard/internal/export"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/sales"
	"orders-dashboard/internal/services"
)

const (
	version      = "1.0.0"
	cacheControl = "no-cache"
	applyTimeout = 10 * time.Second
)

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// run parses the request filter and applies it. On failure the error has
// already been written.
func (h *APIHandlers) run(w http.ResponseWriter, r *http.Request) (models.DashboardResult, models.FilterSpec, bool) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return models.DashboardResult{}, models.FilterSpec{}, false
	}
	spec, err := q.Spec()
	if err != nil {
		h.fail(w, r, err)
		return models.DashboardResult{}, models.FilterSpec{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), applyTimeout)
	defer cancel()

	result, err := h.dashboard.Apply(ctx, spec)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to compute dashboard"))
		return models.DashboardResult{}, spec, false
	}
	return result, spec, true
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if result, _, ok := h.run(w, r); ok {
		errors.WriteSuccessWithHeaders(w, result, map[string]string{"Cache-Control": cacheControl})
	}
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	if result, _, ok := h.run(w, r); ok {
		errors.WriteSuccessWithHeaders(w, result.KPIs, map[string]string{"Cache-Control": cacheControl})
	}
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	if result, _, ok := h.run(w, r); ok {
		errors.WriteSuccessWithHeaders(w, result.Monthly, map[string]string{"Cache-Control": cacheControl})
	}
}

func (h *APIHandlers) HandleTopRegions(w http.ResponseWriter, r *http.Request) {
	h.ranking(w, r, sales.DimensionRegion)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	h.ranking(w, r, sales.DimensionProduct)
}

func (h *APIHandlers) ranking(w http.ResponseWriter, r *http.Request, dim sales.Dimension) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	spec, err := q.Spec()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = h.dashboard.TopN()
	}

	entries, err := h.dashboard.Rank(r.Context(), spec, dim, limit)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to rank "+string(dim)+"s"))
		return
	}

	errors.WriteSuccessWithHeaders(w, entries, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	result, spec, ok := h.run(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders-dashboard.csv"`)

	if err := export.WriteCSV(w, result, export.Meta{Spec: spec, GeneratedAt: time.Now()}); err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Error("write csv export", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
		"orders":    len(h.dashboard.Snapshot().Orders),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
