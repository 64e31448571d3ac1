// Package export writes a dashboard result as a sectioned CSV document.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"orders-dashboard/internal/models"
)

const csvBufferSize = 32 * 1024

// Meta describes the filter that produced a result. It is written as
// comment lines ahead of the data.
type Meta struct {
	Spec        models.FilterSpec
	GeneratedAt time.Time
}

type csvStreamer struct {
	buf *bufio.Writer
	csv *csv.Writer
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	return &csvStreamer{buf: buf, csv: csv.NewWriter(buf)}
}

func (s *csvStreamer) writeComment(line string) error {
	if err := s.flushRows(); err != nil {
		return err
	}
	_, err := s.buf.WriteString(strings.TrimSuffix(line, "\n") + "\n")
	return err
}

func (s *csvStreamer) writeRow(row ...string) error {
	return s.csv.Write(row)
}

func (s *csvStreamer) flushRows() error {
	s.csv.Flush()
	return s.csv.Error()
}

func (s *csvStreamer) Close() error {
	if err := s.flushRows(); err != nil {
		return err
	}
	return s.buf.Flush()
}

// WriteCSV emits the KPI block followed by the region ranking, the product
// ranking and the monthly series, separated by blank rows. Amounts keep
// their exact decimal form.
func WriteCSV(w io.Writer, result models.DashboardResult, meta Meta) error {
	s := newCSVStreamer(w)

	if err := writeMetadata(s, meta); err != nil {
		return err
	}

	rows := [][]string{
		{"Section", "Key", "Value"},
		{"KPI", "active_regions", strconv.Itoa(result.KPIs.ActiveRegionCount)},
		{"KPI", "orders", strconv.Itoa(result.KPIs.OrderCount)},
		{"KPI", "total_sales", result.KPIs.TotalSales.StringFixed(2)},
		{},
	}
	for _, e := range result.TopRegions {
		rows = append(rows, []string{"TopRegion", e.Value, e.Total.StringFixed(2)})
	}
	rows = append(rows, []string{})
	for _, e := range result.TopProducts {
		rows = append(rows, []string{"TopProduct", e.Value, e.Total.StringFixed(2)})
	}
	rows = append(rows, []string{})
	for _, p := range result.Monthly {
		rows = append(rows, []string{"Monthly", p.Period, p.Total.StringFixed(2)})
	}

	for _, row := range rows {
		if len(row) == 0 {
			row = []string{"", "", ""}
		}
		if err := s.writeRow(row...); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return s.Close()
}

func writeMetadata(s *csvStreamer, meta Meta) error {
	if err := s.writeComment("# Report: Orders Dashboard"); err != nil {
		return err
	}
	if !meta.GeneratedAt.IsZero() {
		if err := s.writeComment("# Generated: " + meta.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	period := "All"
	if dr := meta.Spec.DateRange; dr != nil {
		period = dr.Start.Format(time.DateOnly) + " to " + dr.End.Format(time.DateOnly)
	}
	return s.writeComment(fmt.Sprintf("# Period: %s | Regions: %s | Products: %s",
		period, listOrAll(meta.Spec.Regions), listOrAll(meta.Spec.Products)))
}

func listOrAll(values []string) string {
	if len(values) == 0 {
		return "All"
	}
	return strings.Join(values, ",")
}
