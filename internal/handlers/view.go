package handlers

import (
	"slices"
	"time"

	"orders-dashboard/internal/format"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/ui/templates"
)

// ChartPoint is one bar or line point as the page's chart helpers expect it.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

func kpiView(k models.KPISet) templates.KPIView {
	return templates.KPIView{
		ActiveRegions: format.Count(k.ActiveRegionCount),
		Orders:        format.Count(k.OrderCount),
		TotalSales:    format.Money(k.TotalSales),
	}
}

// rankingPoints converts a ranking for display. With ascending set the
// points are reversed so a horizontal bar chart shows the largest on top;
// entries itself is left untouched.
func rankingPoints(entries []models.RankEntry, ascending bool) []ChartPoint {
	points := make([]ChartPoint, len(entries))
	for i, e := range entries {
		points[i] = ChartPoint{Label: e.Value, Value: e.Total.InexactFloat64(), Text: format.Label(e.Total)}
	}
	if ascending {
		slices.Reverse(points)
	}
	return points
}

func periodPoints(series []models.PeriodTotal) []ChartPoint {
	points := make([]ChartPoint, len(series))
	for i, p := range series {
		points[i] = ChartPoint{Label: p.Period, Value: p.Total.InexactFloat64(), Text: format.Label(p.Total)}
	}
	return points
}

func chartSignals(result models.DashboardResult) map[string]any {
	return map[string]any{
		"kpis":         kpiView(result.KPIs),
		"regionsData":  rankingPoints(result.TopRegions, true),
		"productsData": rankingPoints(result.TopProducts, false),
		"monthlyData":  periodPoints(result.Monthly),
	}
}

func dateOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
