package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders-dashboard/internal/models"
)

func sampleResult() models.DashboardResult {
	return models.DashboardResult{
		KPIs: models.KPISet{ActiveRegionCount: 2, OrderCount: 3, TotalSales: decimal.NewFromInt(350)},
		TopRegions: []models.RankEntry{
			{Value: "South", Total: decimal.NewFromInt(200)},
			{Value: "North", Total: decimal.NewFromInt(150)},
		},
		TopProducts: []models.RankEntry{
			{Value: "Widget, large", Total: decimal.NewFromInt(300)},
		},
		Monthly: []models.PeriodTotal{
			{Period: "2024-01", Total: decimal.NewFromInt(150)},
			{Period: "2024-02", Total: decimal.NewFromInt(200)},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{
		Spec: models.FilterSpec{
			DateRange: &models.DateRange{
				Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			},
			Regions: []string{"North", "South"},
		},
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, WriteCSV(&buf, sampleResult(), meta))

	out := buf.String()
	assert.Contains(t, out, "# Report: Orders Dashboard\n")
	assert.Contains(t, out, "# Generated: 2024-03-01T12:00:00Z\n")
	assert.Contains(t, out, "# Period: 2024-01-01 to 2024-02-29 | Regions: North,South | Products: All\n")

	r := csv.NewReader(strings.NewReader(out))
	r.Comment = '#'
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Section", "Key", "Value"}, records[0])
	assert.Contains(t, records, []string{"KPI", "total_sales", "350.00"})
	assert.Contains(t, records, []string{"TopRegion", "South", "200.00"})
	assert.Contains(t, records, []string{"TopProduct", "Widget, large", "300.00"})
	assert.Equal(t, []string{"Monthly", "2024-02", "200.00"}, records[len(records)-1])
}

func TestWriteCSV_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.DashboardResult{}, Meta{}))

	out := buf.String()
	assert.Contains(t, out, "# Period: All | Regions: All | Products: All")
	assert.NotContains(t, out, "# Generated")
	assert.Contains(t, out, "KPI,orders,0\n")
	assert.Contains(t, out, "KPI,total_sales,0.00\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteCSV(failingWriter{}, sampleResult(), Meta{})
	assert.Error(t, err)
}
