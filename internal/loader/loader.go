// Package loader reads the order spreadsheet into an in-memory table using
// the canonical date/amount/region/product schema.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"orders-dashboard/internal/models"
)

const (
	ColumnDate    = "date"
	ColumnAmount  = "amount"
	ColumnRegion  = "region"
	ColumnProduct = "product"

	chunkSize  = 5000
	maxWorkers = 8

	// maxExcelSerial is 9999-12-31 in the 1900 date system.
	maxExcelSerial = 2958465
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrNoRows        = errors.New("no order rows")
	ErrUnsupported   = errors.New("unsupported dataset format")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01-02-06",
}

// Source describes where the orders live and how the headers are named.
// Columns maps a source header to one of the canonical column names; the
// canonical names themselves are always recognised.
type Source struct {
	Path    string
	Sheet   string
	Columns map[string]string
}

// Load opens src.Path and dispatches on its extension.
func Load(ctx context.Context, src Source) ([]models.Order, error) {
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx":
		return ReadXLSX(ctx, file, src.Sheet, src.Columns)
	case ".csv":
		return ReadCSV(ctx, file, src.Columns)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, src.Path)
	}
}

type columnIndex struct {
	date, amount, region, product int
}

func resolveColumns(header []string, mapping map[string]string) (columnIndex, error) {
	lookup := make(map[string]string, len(mapping)+4)
	for _, c := range []string{ColumnDate, ColumnAmount, ColumnRegion, ColumnProduct} {
		lookup[c] = c
	}
	for source, target := range mapping {
		lookup[normalizeHeader(source)] = strings.ToLower(target)
	}

	found := map[string]int{}
	for i, h := range header {
		if target, ok := lookup[normalizeHeader(h)]; ok {
			if _, dup := found[target]; !dup {
				found[target] = i
			}
		}
	}

	var missing []string
	for _, c := range []string{ColumnDate, ColumnAmount, ColumnRegion, ColumnProduct} {
		if _, ok := found[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return columnIndex{
		date:    found[ColumnDate],
		amount:  found[ColumnAmount],
		region:  found[ColumnRegion],
		product: found[ColumnProduct],
	}, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// record is a data row tagged with its 1-based line in the source, header
// included, so errors point at the line a user would open.
type record struct {
	line  int
	cells []string
}

// dateParser turns a date cell into a calendar day.
type dateParser func(string) (time.Time, error)

// parseRows converts data rows concurrently, preserving row order.
func parseRows(ctx context.Context, recs []record, idx columnIndex, parseDate dateParser) ([]models.Order, error) {
	recs = dropBlank(recs)
	if len(recs) == 0 {
		return nil, ErrNoRows
	}

	orders := make([]models.Order, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(recs); start += chunkSize {
		end := min(start+chunkSize, len(recs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				o, err := parseRow(recs[i].cells, idx, parseDate)
				if err != nil {
					return fmt.Errorf("row %d: %w", recs[i].line, err)
				}
				orders[i] = o
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

func dropBlank(recs []record) []record {
	out := recs[:0:0]
	for _, r := range recs {
		blank := true
		for _, cell := range r.cells {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, r)
		}
	}
	return out
}

func parseRow(row []string, idx columnIndex, parseDate dateParser) (models.Order, error) {
	date, err := parseDate(cell(row, idx.date))
	if err != nil {
		return models.Order{}, err
	}

	amount, err := decimal.NewFromString(cell(row, idx.amount))
	if err != nil {
		return models.Order{}, fmt.Errorf("parse amount %q: %w", cell(row, idx.amount), err)
	}

	return models.Order{
		Date:    date,
		Amount:  amount,
		Region:  cell(row, idx.region),
		Product: cell(row, idx.product),
	}, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseDate accepts ISO dates, Brazilian dd/mm/yyyy and Excel's short date
// display format. The result is truncated to the calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognised format", s)
}

// ParseCellDate is ParseDate for workbook cells, which also carry dates as
// raw Excel serials. Serials past 9999-12-31 are rejected.
func ParseCellDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ParseDate(s)
	}
	if serial < 1 || serial >= maxExcelSerial+1 {
		return time.Time{}, fmt.Errorf("parse date %q: serial out of range", s)
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
