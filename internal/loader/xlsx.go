package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"orders-dashboard/internal/models"
)

// ReadXLSX reads orders from a workbook. An empty sheet name selects the
// first sheet. Cells are read raw so date cells arrive as Excel serials
// regardless of their display format.
func ReadXLSX(ctx context.Context, r io.Reader, sheet string, columns map[string]string) ([]models.Order, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	idx, err := resolveColumns(rows[0], columns)
	if err != nil {
		return nil, err
	}

	recs := make([]record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		recs = append(recs, record{line: i + 2, cells: row})
	}
	return parseRows(ctx, recs, idx, ParseCellDate)
}
