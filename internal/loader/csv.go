package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"orders-dashboard/internal/models"
)

func ReadCSV(ctx context.Context, r io.Reader, columns map[string]string) ([]models.Order, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := resolveColumns(header, columns)
	if err != nil {
		return nil, err
	}

	var recs []record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		line, _ := reader.FieldPos(0)
		recs = append(recs, record{line: line, cells: row})
	}

	// Dates are text here; a bare number is never read as an Excel serial.
	return parseRows(ctx, recs, idx, ParseDate)
}
