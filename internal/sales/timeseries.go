package sales

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"orders-dashboard/internal/models"
)

// MonthlySales buckets filtered by calendar month ("YYYY-MM") and returns
// the per-month totals in chronological order.
func MonthlySales(filtered []models.Order) []models.PeriodTotal {
	sums := make(map[string]decimal.Decimal)
	for _, o := range filtered {
		period := o.Date.Format(models.PeriodLayout)
		sums[period] = sums[period].Add(o.Amount)
	}

	result := make([]models.PeriodTotal, 0, len(sums))
	for period, total := range sums {
		result = append(result, models.PeriodTotal{Period: period, Total: total})
	}

	// "YYYY-MM" sorts lexicographically in calendar order.
	slices.SortFunc(result, func(a, b models.PeriodTotal) int {
		return strings.Compare(a.Period, b.Period)
	})
	return result
}
