package sales

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"orders-dashboard/internal/models"
)

const DefaultTopN = 10

type Dimension string

const (
	DimensionRegion  Dimension = "region"
	DimensionProduct Dimension = "product"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionRegion:
		return DimensionRegion, nil
	case DimensionProduct:
		return DimensionProduct, nil
	default:
		return "", fmt.Errorf("unknown dimension %q", s)
	}
}

func (d Dimension) valueOf(o models.Order) string {
	if d == DimensionProduct {
		return o.Product
	}
	return o.Region
}

// TopN groups filtered by dim, sums amounts and keeps the n largest groups.
// Equal totals are ordered by dimension value ascending. n <= 0 selects
// DefaultTopN.
func TopN(filtered []models.Order, dim Dimension, n int) []models.RankEntry {
	if n <= 0 {
		n = DefaultTopN
	}

	sums := make(map[string]decimal.Decimal)
	for _, o := range filtered {
		key := dim.valueOf(o)
		sums[key] = sums[key].Add(o.Amount)
	}

	result := make([]models.RankEntry, 0, len(sums))
	for value, total := range sums {
		result = append(result, models.RankEntry{Value: value, Total: total})
	}

	slices.SortFunc(result, func(a, b models.RankEntry) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}
