package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"orders-dashboard/internal/errors"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/services"
	"orders-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard is called by the page on every widget change. It reads
// the filter from the datastar signals, reruns the pipeline, patches the KPI
// cards and pushes the chart data as signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	logger := observability.LoggerFrom(r.Context(), h.logger)

	var q FilterQuery
	if err := datastar.ReadSignals(r, &q); err != nil {
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, "Invalid signals"), requestID)
		return
	}
	q.Limit = 0
	if err := q.Validate(); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	spec, err := q.Spec()
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), applyTimeout)
	defer cancel()

	result, err := h.dashboard.Apply(ctx, spec)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to compute dashboard"), requestID)
		return
	}

	var buf bytes.Buffer
	if err := templates.KPICards(kpiView(result.KPIs)).Render(ctx, &buf); err != nil {
		logger.Error("render kpi cards", "error", err)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to render"), requestID)
		return
	}

	signals, err := json.Marshal(chartSignals(result))
	if err != nil {
		logger.Error("marshal chart signals", "error", err)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to encode"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(buf.String()); err != nil {
		logger.Warn("patch kpi cards", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		logger.Warn("patch chart signals", "error", err)
	}
}
