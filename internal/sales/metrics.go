package sales

import (
	"github.com/shopspring/decimal"

	"orders-dashboard/internal/models"
)

// ComputeKPIs summarises a filtered table. An empty table yields zero values.
func ComputeKPIs(filtered []models.Order) models.KPISet {
	regions := make(map[string]struct{})
	total := decimal.Zero

	for _, o := range filtered {
		regions[o.Region] = struct{}{}
		total = total.Add(o.Amount)
	}

	return models.KPISet{
		ActiveRegionCount: len(regions),
		OrderCount:        len(filtered),
		TotalSales:        total,
	}
}
