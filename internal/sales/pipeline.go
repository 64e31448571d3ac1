package sales

import (
	"golang.org/x/sync/errgroup"

	"orders-dashboard/internal/models"
)

// Run filters table once and feeds the same filtered snapshot to every
// aggregator. The aggregators run concurrently; none of them writes to the
// snapshot.
func Run(table []models.Order, spec models.FilterSpec, topN int) models.DashboardResult {
	filtered := Filter(table, spec)

	var result models.DashboardResult
	var g errgroup.Group

	g.Go(func() error {
		result.KPIs = ComputeKPIs(filtered)
		return nil
	})
	g.Go(func() error {
		result.TopRegions = TopN(filtered, DimensionRegion, topN)
		return nil
	})
	g.Go(func() error {
		result.TopProducts = TopN(filtered, DimensionProduct, topN)
		return nil
	})
	g.Go(func() error {
		result.Monthly = MonthlySales(filtered)
		return nil
	})

	_ = g.Wait()
	return result
}
