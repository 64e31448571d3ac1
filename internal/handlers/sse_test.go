package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"orders-dashboard/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := testLogger()

	handlers := NewSSEHandlers(dashboard, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewSSEHandlers() should set dashboard field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func sseRequest(signals string) *http.Request {
	target := "/sse/dashboard"
	if signals != "" {
		target += "?datastar=" + url.QueryEscape(signals)
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"start":"2024-01-01","end":"2024-01-31","regions":[],"products":[]}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control no-cache, got %q", cc)
	}

	body := w.Body.String()
	checks := []string{
		"event: datastar-patch-elements",
		`id="kpi-cards"`,
		"150,00",
		"event: datastar-patch-signals",
		"regionsData",
		"productsData",
		"monthlyData",
		"R$ 150",
	}
	for _, want := range checks {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in SSE stream:\n%s", want, body)
		}
	}
}

func TestSSEHandlers_HandleDashboard_NoSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "350,00") {
		t.Errorf("expected unfiltered total in stream, got %s", w.Body.String())
	}
}

func TestSSEHandlers_HandleDashboard_InvalidSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	tests := []struct {
		name    string
		signals string
	}{
		{"malformed json", `{"start":`},
		{"bad date", `{"start":"2024-02-30","end":"2024-03-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleDashboard(w, sseRequest(tt.signals))

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			if !strings.Contains(w.Body.String(), "VALIDATION_ERROR") {
				t.Errorf("expected validation error body, got %s", w.Body.String())
			}
		})
	}
}

func TestRankingPoints_AscendingCopy(t *testing.T) {
	entries := []models.RankEntry{
		{Value: "South", Total: decimal.NewFromInt(200)},
		{Value: "North", Total: decimal.NewFromInt(150)},
	}

	points := rankingPoints(entries, true)

	if points[0].Label != "North" || points[1].Label != "South" {
		t.Errorf("expected ascending points, got %+v", points)
	}
	if entries[0].Value != "South" {
		t.Error("expected ranking to stay descending")
	}
	if points[1].Text != "R$ 200" {
		t.Errorf("expected label R$ 200, got %q", points[1].Text)
	}
}
